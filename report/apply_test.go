package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/transaction"
)

func TestDocumentApply(t *testing.T) {
	fix := func(url, from, to string) *Report {
		return &Report{
			ErrorID:         "wikidata tag links to 404",
			Prerequisite:    transaction.Values{"wikidata": transaction.Str(from)},
			ProposedChanges: []transaction.Transaction{transaction.New(map[string]string{"wikidata": from}, map[string]string{"wikidata": to})},
			FeatureURL:      url,
		}
	}
	doc := NewDocument("test", []*Report{
		fix("https://www.openstreetmap.org/node/1", "Q404", "Q42"),
		fix("https://www.openstreetmap.org/node/2", "Q404", "Q42"),
		{ErrorID: "wikipedia wikidata mismatch", FeatureURL: "https://www.openstreetmap.org/node/3"},
		fix("https://www.openstreetmap.org/node/9", "Q1", "Q2"),
		fix("https://www.openstreetmap.org/node/1", "Q42", "Q7"),
	})

	elements := []*feature.Element{
		{ID: "node/1", TagSet: feature.Tags{"wikidata": "Q404", "name": "Towel"}},
		{ID: "node/2", TagSet: feature.Tags{"wikidata": "Q5"}},
		{ID: "node/3", TagSet: feature.Tags{"wikidata": "Q1"}},
	}

	outcomes := doc.Apply(elements)
	require.Len(t, outcomes, 4, "one outcome per feature")

	assert.True(t, outcomes[0].Applied)
	assert.Equal(t, feature.Tags{"wikidata": "Q42", "name": "Towel"}, elements[0].TagSet)

	assert.False(t, outcomes[1].Applied)
	assert.Contains(t, outcomes[1].Reason, "tags changed")
	assert.Equal(t, feature.Tags{"wikidata": "Q5"}, elements[1].TagSet)

	assert.Equal(t, "no proposed change", outcomes[2].Reason)
	assert.Equal(t, "feature not in input", outcomes[3].Reason)
}
