package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/wdlint/cmd/wdlint/commands"
	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/logger"
)

var rootCmd = &cobra.Command{
	Use:   "wdlint",
	Short: "wdlint - Wikidata and Wikipedia link checker for map features",
	Long: `wdlint - Wikidata and Wikipedia link checker for map features.

wdlint looks at the wikidata=* and wikipedia=* tags of map features and
reports the single most important problem with each: malformed values,
links to pages that do not exist, tags that disagree with each other, and
links to things that cannot be the subject of a map feature (people,
events, brands, species...). Most reports come with a proposed tag change.

Available commands:
  check    - Check features from a GeoJSON file or from --tags
  classify - Explain why a Wikidata item can or cannot be linked
  apply    - Apply the fixes of a report document to a GeoJSON file
  cache    - Inspect and manage the knowledge-base cache
  am       - Manage wdlint configuration ("I am")

Examples:
  wdlint check --tags "wikidata=Q42 amenity=cafe"
  wdlint check features.geojson --format yaml > report.yaml
  wdlint apply report.yaml features.geojson --out fixed.geojson
  wdlint classify Q42 --explain`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logJSON, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(logJSON, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().Bool("json", false, "Shorthand for --format json")

	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.ClassifyCmd)
	rootCmd.AddCommand(commands.ApplyCmd)
	rootCmd.AddCommand(commands.CacheCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
