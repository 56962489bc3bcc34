package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/logger"
	"github.com/teranos/wdlint/report"
)

// ApplyCmd applies a report document to a GeoJSON file
var ApplyCmd = &cobra.Command{
	Use:   "apply <report.yaml> <file.geojson>",
	Short: "Apply the proposed fixes of a report document",
	Long: `Apply the first proposed tag change of every report to the matching
feature. A feature whose tags changed since the report was produced is left
alone.

Examples:
  wdlint check shops.geojson --out report.yaml
  wdlint apply report.yaml shops.geojson --out fixed.geojson`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

var applyOut string

func init() {
	ApplyCmd.Flags().StringVarP(&applyOut, "out", "o", "-", "Where to write the updated GeoJSON (- for stdout)")
}

func runApply(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	elements, err := loadElements(args[1])
	if err != nil {
		return err
	}

	outcomes := doc.Apply(elements)
	applied := 0
	for _, o := range outcomes {
		if o.Applied {
			applied++
			continue
		}
		logger.Debugw("Fix skipped",
			logger.FieldFeature, o.FeatureURL,
			logger.FieldErrorID, o.ErrorID,
			"reason", o.Reason)
	}

	var w io.Writer = cmd.OutOrStdout()
	if applyOut != "-" {
		f, err := os.Create(applyOut)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", applyOut)
		}
		defer f.Close()
		w = f
	}
	if err := feature.SaveGeoJSON(w, elements); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s %d of %d fixes applied (run %s)\n",
		pterm.LightGreen("✓"), applied, len(outcomes), doc.RunID)
	return nil
}

func readDocument(path string) (*report.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	doc, err := report.ReadDocument(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return doc, nil
}
