package display

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/teranos/wdlint/ontology"
	"github.com/teranos/wdlint/wiki"
)

// RenderExplanation prints what the classifier concluded about one item,
// with the ancestry in traversal order when verbose.
func RenderExplanation(w io.Writer, ex ontology.Explanation, verbose bool) {
	fmt.Fprintf(w, "%s %s\n", pterm.LightCyan(ex.ID), verdict(ex))

	if ex.Allowed {
		fmt.Fprintf(w, "  %s\n", pterm.Gray("on the allow list, classification is skipped"))
	}
	if ex.Unlinkable != "" {
		fmt.Fprintf(w, "  %s %s\n", pterm.Gray("page kind:"), ex.Unlinkable)
	}
	if ex.Category != nil {
		fmt.Fprintf(w, "  %s %s via %s%s\n", pterm.Gray("type:"), ex.Category.Label, ex.Category.ID, prefixHint(ex.Category.Prefix))
	}
	if ex.ByProperty != nil {
		fmt.Fprintf(w, "  %s %s via %s%s\n", pterm.Gray("property:"), ex.ByProperty.Label, ex.ByProperty.ID, prefixHint(ex.ByProperty.Prefix))
	}
	if !verbose {
		return
	}
	fmt.Fprintf(w, "  %s %d types\n", pterm.Gray("ancestry:"), len(ex.Ancestry))
	for i, t := range ex.Ancestry {
		fmt.Fprintf(w, "    %3d  %s\n", i+1, t)
	}
	if ex.Truncated {
		fmt.Fprintf(w, "    %s\n", pterm.Yellow("… stopped at the ancestry limit"))
	}
}

func verdict(ex ontology.Explanation) string {
	switch {
	case ex.Allowed:
		return pterm.LightGreen("can be linked")
	case ex.Unlinkable != "" || ex.Category != nil || ex.ByProperty != nil:
		return pterm.Red("should not be a primary link")
	default:
		return pterm.LightGreen("can be linked")
	}
}

func prefixHint(prefix string) string {
	if prefix == "" {
		return ""
	}
	return fmt.Sprintf(" (use %swikidata)", prefix)
}

// RenderCacheStats prints the cache counters.
func RenderCacheStats(w io.Writer, path string, s wiki.CacheStats) error {
	location := path
	if location == "" {
		location = "memory only"
	}
	data := pterm.TableData{
		{"", "entities", "articles"},
		{"memory", fmt.Sprint(s.MemoryEntities), fmt.Sprint(s.MemoryArticles)},
		{"disk", fmt.Sprint(s.DiskEntities), fmt.Sprint(s.DiskArticles)},
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", pterm.Gray("cache:"), location)
	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "%s %d   %s %d   %s %d\n",
		pterm.Gray("negative records:"), s.DiskMissing,
		pterm.Gray("hits:"), s.Hits,
		pterm.Gray("misses:"), s.Misses)
	return nil
}
