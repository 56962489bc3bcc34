package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/wdlint/am"
	"github.com/teranos/wdlint/checker"
	"github.com/teranos/wdlint/display"
	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/logger"
	"github.com/teranos/wdlint/report"
)

// CheckCmd checks the links of map features
var CheckCmd = &cobra.Command{
	Use:   "check [file.geojson]",
	Short: "Check wikidata and wikipedia tags of features",
	Long: `Check the wikidata and wikipedia tags of features and report the most
important problem with each.

Features come from a GeoJSON file (properties are the tags) or, with --tags,
from a single tag list on the command line.

Examples:
  wdlint check --tags "wikidata=Q42"
  wdlint check --tags "wikipedia='en:Douglas Adams'" --format yaml
  wdlint check shops.geojson --country de
  wdlint check shops.geojson --format yaml --out report.yaml
  wdlint check shops.geojson --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

var (
	checkTags             string
	checkOut              string
	checkWatch            bool
	checkLanguages        []string
	checkExpectedLanguage string
	checkCountry          string
	checkNoPropose        bool
)

func init() {
	formatFlag(CheckCmd, "pretty")
	CheckCmd.Flags().StringVar(&checkTags, "tags", "", `Check one feature with these tags, e.g. "wikidata=Q42 name='Douglas Adams'"`)
	CheckCmd.Flags().StringVar(&checkOut, "out", "", "Also write the report document (YAML) to this file")
	CheckCmd.Flags().BoolVar(&checkWatch, "watch", false, "Re-check the file whenever it changes")
	CheckCmd.Flags().StringSliceVar(&checkLanguages, "lang", nil, "Preferred link languages, before the built-in order (repeatable)")
	CheckCmd.Flags().StringVar(&checkExpectedLanguage, "expected-language", "", "Language links are expected in")
	CheckCmd.Flags().StringVar(&checkCountry, "country", "", "Country of the features (ISO 3166-1 alpha-2), sets the expected language")
	CheckCmd.Flags().BoolVar(&checkNoPropose, "no-propose", false, "Do not propose adding missing wikidata or wikipedia tags")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (checkTags == "") {
		return errors.WithHint(errors.New("give either a GeoJSON file or --tags"), "see 'wdlint check --help'")
	}
	if checkWatch && len(args) == 0 {
		return errors.New("--watch needs a file")
	}
	format, err := display.FormatFlag(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCheckFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	chk, err := checker.New(rt.resolver, rt.tables, rt.classifier, checker.Options{
		Languages:        cfg.Check.Languages,
		ExpectedLanguage: cfg.Check.ExpectedLanguage,
		Country:          cfg.Check.Country,
		ProposeMissing:   cfg.Check.ProposeMissing,
	}, logger.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if checkTags != "" {
		tags, err := feature.ParseTagArgs(checkTags)
		if err != nil {
			return err
		}
		el := &feature.Element{ID: "tags", TagSet: tags}
		return checkAndWrite(ctx, cmd.OutOrStdout(), chk, format, "--tags", []*feature.Element{el})
	}

	path := args[0]
	run := func() error {
		elements, err := loadElements(path)
		if err != nil {
			return err
		}
		return checkAndWrite(ctx, cmd.OutOrStdout(), chk, format, path, elements)
	}
	if err := run(); err != nil {
		return err
	}
	if !checkWatch {
		return nil
	}

	fw, err := am.NewFileWatcher(path, am.DefaultDebounce)
	if err != nil {
		return err
	}
	defer fw.Stop()
	fw.OnChange(func(string) error { return run() })
	fw.Start()
	logger.Infow("Watching for changes", logger.FieldFile, path)

	<-ctx.Done()
	return nil
}

// applyCheckFlags lets explicit flags override configuration
func applyCheckFlags(cmd *cobra.Command, cfg *am.Config) {
	if cmd.Flags().Changed("lang") {
		cfg.Check.Languages = checkLanguages
	}
	if cmd.Flags().Changed("expected-language") {
		cfg.Check.ExpectedLanguage = strings.ToLower(checkExpectedLanguage)
	}
	if cmd.Flags().Changed("country") {
		cfg.Check.Country = strings.ToLower(checkCountry)
	}
	if checkNoPropose {
		cfg.Check.ProposeMissing = false
	}
}

func loadElements(path string) ([]*feature.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	elements, err := feature.LoadGeoJSON(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return elements, nil
}

func checkAndWrite(ctx context.Context, w io.Writer, chk *checker.Checker, format display.Format, source string, elements []*feature.Element) error {
	features := make([]feature.Feature, len(elements))
	for i, e := range elements {
		features[i] = e
	}
	reports, err := chk.CheckAll(ctx, features)
	if err != nil {
		return err
	}

	doc := report.NewDocument(filepath.Base(source), reports)
	if checkOut != "" {
		if err := writeDocument(checkOut, doc); err != nil {
			return err
		}
	}

	switch format {
	case display.FormatJSON:
		return doc.WriteJSON(w)
	case display.FormatYAML:
		return doc.WriteYAML(w)
	default:
		return display.RenderReports(w, reports)
	}
}

func writeDocument(path string, doc *report.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := doc.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
