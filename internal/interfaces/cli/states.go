package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/claimtrack/internal/application/dashboard"
	"github.com/turtacn/claimtrack/internal/domain/claim"
)

func NewStatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "Print the classification precedence table",
		Long:  "Lists the classification rules in the order they are tried. The first rule whose guard holds decides the state.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := dashboard.NewPresenter(claim.NewDeadlineEvaluator(nil)).Rules()
			return PrintResult(cmd, rules, func() string { return formatRules(rules) })
		},
	}
}

func formatRules(rules []claim.RuleInfo) string {
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		states := make([]string, len(r.States))
		for i, s := range r.States {
			label := string(s)
			if s.IsTerminal() {
				label += "*"
			}
			states[i] = label
		}
		rows = append(rows, []string{strconv.Itoa(r.Priority), r.Name, strings.Join(states, ", ")})
	}
	return FormatTable([]string{"#", "RULE", "STATES"}, rows) + "\n* terminal state\n"
}
