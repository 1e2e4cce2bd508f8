package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo is the version information printed by the version command.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func (b BuildInfo) RenderText(cmd *cobra.Command) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "simpol %s (commit %s, built %s, %s)\n", b.Version, b.Commit, b.BuildDate, b.GoVersion)
	return err
}

// NewVersionCmd prints build information.  It needs no configuration.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			return PrintResult(cmd, format, BuildInfo{
				Version:   Version,
				Commit:    GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
			})
		},
	}
}

//Personal.AI order the ending
