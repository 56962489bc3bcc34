package display

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/wdlint/report"
	"github.com/teranos/wdlint/transaction"
)

// RenderReports writes one block per report followed by a summary table.
func RenderReports(w io.Writer, reports []*report.Report) error {
	if len(reports) == 0 {
		fmt.Fprintln(w, pterm.LightGreen("✓ No problems found"))
		return nil
	}

	counts := make(map[string]int)
	for _, r := range reports {
		counts[r.ErrorID]++
		renderReport(w, r)
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})

	data := pterm.TableData{{"problem", "count"}}
	for _, id := range ids {
		data = append(data, []string{id, strconv.Itoa(counts[id])})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)
	return nil
}

func renderReport(w io.Writer, r *report.Report) {
	fmt.Fprintf(w, "%s %s\n", pterm.Red("✗"), pterm.Yellow(r.ErrorID))
	if r.FeatureURL != "" {
		fmt.Fprintf(w, "  %s %s\n", pterm.Gray("feature:"), r.FeatureURL)
	}
	if r.CurrentLink != "" {
		fmt.Fprintf(w, "  %s %s\n", pterm.Gray("link:"), r.CurrentLink)
	}
	fmt.Fprintf(w, "  %s\n", r.Message)
	if r.DesiredLinkTarget != "" {
		fmt.Fprintf(w, "  %s %s\n", pterm.Gray("→"), pterm.LightGreen(r.DesiredLinkTarget))
	}
	if r.Extra.Kind != report.ExtraNone {
		fmt.Fprintf(w, "  %s %s\n", pterm.Gray(extraLabel(r.Extra.Kind)+":"), pterm.LightCyan(r.Extra.Value))
	}
	for _, t := range r.ProposedChanges {
		fmt.Fprintf(w, "  %s %s\n", pterm.LightGreen("fix:"), DescribeTransaction(t))
	}
	fmt.Fprintln(w)
}

func extraLabel(kind report.ExtraKind) string {
	switch kind {
	case report.ExtraPrefix:
		return "prefix"
	case report.ExtraLanguage:
		return "language"
	case report.ExtraConflict:
		return "conflict"
	default:
		return "extra"
	}
}

// DescribeTransaction renders a transaction as "-key=value +key=value".
func DescribeTransaction(t transaction.Transaction) string {
	var parts []string
	for _, k := range t.From.Keys() {
		if v := t.From[k]; v != nil {
			if nv, ok := t.To[k]; ok && nv != nil {
				continue
			}
			parts = append(parts, "-"+k+"="+*v)
		}
	}
	for _, k := range t.To.Keys() {
		v := t.To[k]
		if v == nil {
			continue
		}
		if old := t.From[k]; old != nil {
			parts = append(parts, k+": "+*old+" → "+*v)
			continue
		}
		parts = append(parts, "+"+k+"="+*v)
	}
	if len(parts) == 0 {
		return "(no change)"
	}
	return strings.Join(parts, " ")
}
