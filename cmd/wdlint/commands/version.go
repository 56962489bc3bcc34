package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/wdlint/display"
	"github.com/teranos/wdlint/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show wdlint version information",
	Long:  `Display version, build time, commit hash, and platform information for the wdlint binary.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return display.OutputJSON(cmd.OutOrStdout(), info, false)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, info.String())
		fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		return nil
	},
}
