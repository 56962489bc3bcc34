package display

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teranos/wdlint/ontology"
	"github.com/teranos/wdlint/report"
	"github.com/teranos/wdlint/transaction"
	"github.com/teranos/wdlint/wiki"
)

func init() {
	pterm.DisableStyling()
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "JSON": FormatJSON, " pretty ": FormatPretty} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "check"}
	cmd.Flags().String("format", "pretty", "")
	cmd.Flags().Bool("json", false, "")

	f, err := FormatFlag(cmd)
	require.NoError(t, err)
	assert.Equal(t, FormatPretty, f)

	require.NoError(t, cmd.Flags().Set("json", "true"))
	f, err = FormatFlag(cmd)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
}

func TestOutput(t *testing.T) {
	v := map[string]int{"problems": 2}

	var js bytes.Buffer
	require.NoError(t, Output(&js, FormatJSON, v))
	var back map[string]int
	require.NoError(t, json.Unmarshal(js.Bytes(), &back))
	assert.Equal(t, v, back)

	var ym bytes.Buffer
	require.NoError(t, Output(&ym, FormatYAML, v))
	back = nil
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, v, back)
}

func TestDescribeTransaction(t *testing.T) {
	tests := []struct {
		name string
		tx   transaction.Transaction
		want string
	}{
		{
			"replace",
			transaction.New(map[string]string{"wikidata": "Q1"}, map[string]string{"wikidata": "Q2"}),
			"wikidata: Q1 → Q2",
		},
		{
			"move",
			transaction.New(map[string]string{"wikidata": "Q1"}, map[string]string{"brand:wikidata": "Q1"}),
			"-wikidata=Q1 +brand:wikidata=Q1",
		},
		{
			"add",
			transaction.Transaction{
				From: transaction.Values{"wikipedia": nil},
				To:   transaction.Values{"wikipedia": transaction.Str("de:Berlin")},
			},
			"+wikipedia=de:Berlin",
		},
		{"nothing", transaction.Transaction{}, "(no change)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeTransaction(tt.tx))
		})
	}
}

func TestRenderReports(t *testing.T) {
	var empty bytes.Buffer
	require.NoError(t, RenderReports(&empty, nil))
	assert.Contains(t, empty.String(), "No problems found")

	reports := []*report.Report{
		{
			ErrorID:    "wikidata tag links to 404",
			Message:    "wikidata=Q999 links to an item that does not exist",
			FeatureURL: "https://www.openstreetmap.org/node/1",
		},
		{
			ErrorID:         "blacklisted connection with known replacement",
			Message:         "Q37158 (Starbucks) should not be the primary link",
			Extra:           report.Prefix("brand:"),
			ProposedChanges: []transaction.Transaction{transaction.New(map[string]string{"wikidata": "Q37158"}, map[string]string{"brand:wikidata": "Q37158"})},
		},
		{ErrorID: "wikidata tag links to 404", Message: "again"},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderReports(&buf, reports))
	out := buf.String()
	assert.Contains(t, out, "https://www.openstreetmap.org/node/1")
	assert.Contains(t, out, "prefix: brand:")
	assert.Contains(t, out, "+brand:wikidata=Q37158")
	assert.Contains(t, out, "problem")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("✗ wikidata tag links to 404")))
}

func TestRenderExplanation(t *testing.T) {
	ex := ontology.Explanation{
		ID:       "Q42",
		Ancestry: []string{"Q5", "Q154954"},
		Category: &ontology.Category{ID: "Q5", Label: "a human", Prefix: "subject:"},
	}

	var short bytes.Buffer
	RenderExplanation(&short, ex, false)
	assert.Contains(t, short.String(), "should not be a primary link")
	assert.Contains(t, short.String(), "a human via Q5 (use subject:wikidata)")
	assert.NotContains(t, short.String(), "Q154954")

	var long bytes.Buffer
	RenderExplanation(&long, ex, true)
	assert.Contains(t, long.String(), "Q154954")
}

func TestRenderCacheStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCacheStats(&buf, "", wiki.CacheStats{DiskEntities: 3, Hits: 7}))
	assert.Contains(t, buf.String(), "memory only")
	assert.Contains(t, buf.String(), "hits: 7")
}
