package commands

import (
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/wdlint/display"
	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/wiki"
)

// ClassifyCmd explains the classification of one item
var ClassifyCmd = &cobra.Command{
	Use:   "classify <QID>",
	Short: "Explain whether a Wikidata item can be a primary link",
	Long: `Walk the type ancestry of a Wikidata item (instance of, then subclass of)
and show which category, property or page kind disqualifies it, if any.

Examples:
  wdlint classify Q42              # a human
  wdlint classify Q64 --explain    # full ancestry in traversal order`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

var classifyExplain bool

func init() {
	formatFlag(ClassifyCmd, "pretty")
	ClassifyCmd.Flags().BoolVar(&classifyExplain, "explain", false, "Print the ancestry in traversal order")
}

func runClassify(cmd *cobra.Command, args []string) error {
	id := strings.ToUpper(strings.TrimSpace(args[0]))
	if !wiki.IsEntityID(id) {
		return errors.WithHint(errors.NewInvalidRequestError("%q is not a Wikidata item id", args[0]), "item ids look like Q42")
	}
	format, err := display.FormatFlag(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	e, err := rt.resolver.Entity(ctx, id, false)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch %s", id)
	}
	if e == nil {
		return errors.NewNotFoundError("%s does not exist", id)
	}

	ex := rt.classifier.Explain(ctx, id)
	if format != display.FormatPretty {
		return display.Output(cmd.OutOrStdout(), format, ex)
	}
	display.RenderExplanation(cmd.OutOrStdout(), ex, classifyExplain)
	return nil
}
