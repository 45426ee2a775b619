package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate, GoVersion: runtime.Version()}
			return PrintResult(cmd, info, func() string {
				return fmt.Sprintf("claimtrack %s (commit: %s, built: %s, %s)\n", info.Version, info.Commit, info.BuildDate, info.GoVersion)
			})
		},
	}
}
