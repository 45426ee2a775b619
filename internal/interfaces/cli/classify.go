package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/claimtrack/internal/application/dashboard"
	"github.com/turtacn/claimtrack/internal/config"
	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/domain/narrative"
	"github.com/turtacn/claimtrack/pkg/errors"
)

func NewClassifyCmd() *cobra.Command {
	var (
		file       string
		viewer     string
		now        string
		timezone   string
		cutoffHour int
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a claim record file and show a party's dashboard",
		Long: "Reads a claim record (YAML, or JSON when the file ends in .json; \"-\" reads stdin),\n" +
			"classifies it at --now and prints the state and the narrative selected for --viewer.",
		Example: "  claimtrack classify --file record.yaml --viewer claimant --now 2024-03-15T16:01:00Z",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := narrative.ParseViewer(viewer)
			if err != nil {
				return err
			}
			at, err := parseInstant(now)
			if err != nil {
				return err
			}
			// 0 is unset, as in dashboard.cutoff_hour.
			if cutoffHour == 0 {
				cutoffHour = claim.DefaultCutoffHour
			}
			deadlines, err := claim.NewDeadlineEvaluatorForZone(timezone, cutoffHour)
			if err != nil {
				return errors.InvalidParam("invalid deadline rule").WithCause(err).WithDetail(err.Error())
			}

			rec, err := readRecord(cmd, file)
			if err != nil {
				return err
			}

			svc := dashboard.NewService(nil, deadlines, commandLogger(cmd))
			view, err := svc.Classify(cmd.Context(), &dashboard.ClassifyRequest{Record: rec, Viewer: v, Now: at})
			if err != nil {
				return err
			}
			return PrintResult(cmd, view, func() string { return formatView(view) })
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "claim record file, or - for stdin [REQUIRED]")
	f.StringVar(&viewer, "viewer", "claimant", "viewing party (claimant, defendant)")
	f.StringVar(&now, "now", "", "evaluation instant in RFC 3339 (default: current time)")
	f.StringVar(&timezone, "timezone", config.DefaultDashboardTimezone, "zone deadline cutoffs are read in")
	f.IntVar(&cutoffHour, "cutoff-hour", config.DefaultDashboardCutoffHour, "hour a deadline lapses on its date (0 means the default)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func parseInstant(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errors.InvalidParam("--now must be an RFC 3339 timestamp").WithDetail("now=" + s)
	}
	return &t, nil
}

func readRecord(cmd *cobra.Command, path string) (*claim.Record, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.InvalidParam("cannot read record file").WithCause(err).WithDetail(err.Error())
	}

	rec := &claim.Record{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(rec)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(rec)
	}
	if err != nil {
		return nil, errors.New(errors.ErrCodeSerialization, "record file is not a claim record").WithCause(err).WithDetail(err.Error())
	}
	return rec, nil
}

func formatView(v *dashboard.View) string {
	var sb strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&sb, "%-14s%s\n", label+":", value)
	}

	terminal := "no"
	if v.Terminal {
		terminal = "yes"
	}
	line("External ID", v.ExternalID)
	line("Viewer", string(v.Viewer))
	line("State", fmt.Sprintf("%s (terminal: %s)", v.State, terminal))
	line("Rule", fmt.Sprintf("%d %s", v.Priority, v.Rule))
	line("Narrative", v.Narrative.Key)

	p := v.Narrative.Params
	if p.OtherPartyName != "" {
		line("Other party", p.OtherPartyName)
	}
	if p.Deadline != nil {
		line("Deadline", fmt.Sprintf("%s (lapses %s)", p.Deadline.Date, p.Deadline.Cutoff.Format(time.RFC3339)))
	}
	if p.RespondedOn != nil {
		line("Responded on", p.RespondedOn.String())
	}
	if p.PaidAmount != nil {
		paid := p.PaidAmount.String()
		if p.PaidDate != nil {
			paid += " on " + p.PaidDate.String()
		}
		line("Paid", paid)
	}
	if p.PausedSince != nil {
		line("Paused since", p.PausedSince.String())
	}
	if len(p.Documents) > 0 {
		docs := make([]string, len(p.Documents))
		for i, d := range p.Documents {
			docs[i] = string(d)
		}
		line("Documents", strings.Join(docs, ", "))
	}
	line("Evaluated at", v.EvaluatedAt.Format(time.RFC3339))
	return sb.String()
}
