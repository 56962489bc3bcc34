package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/tables"
	"github.com/teranos/wdlint/transaction"
	"github.com/teranos/wdlint/wiki/wikitest"
)

func newValidator(t *testing.T, kb *wikitest.Memory, languages ...string) *Validator {
	t.Helper()
	v, err := New(kb.Resolver(), tables.Default(), languages, nil)
	require.NoError(t, err)
	return v
}

func adamsKB() *wikitest.Memory {
	return wikitest.New().
		InstanceOf("Q42", "Q5").
		Sitelink("Q42", "en", "Douglas Adams").
		Sitelink("Q42", "de", "Douglas Adams").
		Sitelink("Q42", "pl", "Douglas Adams")
}

func TestBestLink(t *testing.T) {
	kb := wikitest.New().
		Sitelink("Q1", "de", "Eins").
		Sitelink("Q1", "fr", "Un").
		Sitelink("Q1", "szl", "Jedyn")
	ctx := context.Background()

	link, ok := newValidator(t, kb).BestLink(ctx, "Q1")
	require.True(t, ok)
	assert.Equal(t, "de:Eins", link.String(), "importance order puts de before fr")

	v := newValidator(t, kb, "szl", "fr")
	link, ok = v.BestLink(ctx, "Q1")
	require.True(t, ok)
	assert.Equal(t, "szl:Jedyn", link.String(), "caller languages come first")

	_, ok = v.BestLink(ctx, "Q404")
	assert.False(t, ok)

	calls := kb.EntityCalls("Q1")
	v.BestLink(ctx, "Q1")
	v.BestLink(ctx, "Q404")
	assert.Equal(t, calls, kb.EntityCalls("Q1"), "memoised per entity")
	assert.Equal(t, 1, kb.EntityCalls("Q404"), "absence is memoised too")
}

func TestBestLinkDoesNotMemoiseFailures(t *testing.T) {
	kb := wikitest.New().Fail("Q1", errors.ErrServiceUnavailable)
	v := newValidator(t, kb)
	ctx := context.Background()

	v.BestLink(ctx, "Q1")
	v.BestLink(ctx, "Q1")
	assert.Equal(t, 2, kb.EntityCalls("Q1"))
}

func TestEffectiveValues(t *testing.T) {
	v := newValidator(t, adamsKB())
	ctx := context.Background()

	assert.Equal(t, "Q42", v.EffectiveWikidata(ctx, feature.Tags{"wikipedia": "de:Douglas Adams"}))
	assert.Equal(t, "Q7", v.EffectiveWikidata(ctx, feature.Tags{"wikidata": "Q7", "wikipedia": "de:Douglas Adams"}))
	assert.Equal(t, "", v.EffectiveWikidata(ctx, feature.Tags{"wikipedia": "Douglas Adams"}))

	link, ok := v.EffectiveLink(ctx, feature.Tags{"wikidata": "Q42"}, "Q42")
	require.True(t, ok)
	assert.Equal(t, "en:Douglas Adams", link.String())

	link, ok = v.EffectiveLink(ctx, feature.Tags{"wikipedia": "pl:Douglas Adams"}, "Q42")
	require.True(t, ok)
	assert.Equal(t, "pl", link.Lang)

	_, ok = v.EffectiveLink(ctx, feature.Tags{}, "")
	assert.False(t, ok)
}

func TestWikidataExists(t *testing.T) {
	kb := adamsKB().Fail("Q13", errors.ErrServiceUnavailable)
	v := newValidator(t, kb)
	ctx := context.Background()

	assert.Nil(t, v.WikidataExists(ctx, feature.Tags{"wikidata": "Q42"}))
	assert.Nil(t, v.WikidataExists(ctx, feature.Tags{"wikidata": "Q13"}), "unknown is not a 404")

	r := v.WikidataExists(ctx, feature.Tags{"wikidata": "Q999999999999999999999999999999999999"})
	require.NotNil(t, r)
	assert.Equal(t, IDWikidata404, r.ErrorID)
	assert.Empty(t, r.ProposedChanges)

	tags := map[string]string{"wikidata": "Q404", "wikipedia": "en:Douglas Adams"}
	r = v.WikidataExists(ctx, tags)
	require.NotNil(t, r)
	assert.Equal(t, "Q42", r.DesiredLinkTarget)
	require.Len(t, r.ProposedChanges, 1)
	require.NoError(t, r.ProposedChanges[0].Apply(tags))
	assert.Equal(t, "Q42", tags["wikidata"])
}

func TestWikipediaExists(t *testing.T) {
	ctx := context.Background()

	t.Run("sitelink shortcut skips the article fetch", func(t *testing.T) {
		kb := adamsKB()
		v := newValidator(t, kb)
		assert.Nil(t, v.WikipediaExists(ctx, feature.Tags{"wikidata": "Q42", "wikipedia": "de:Douglas_Adams"}))
		assert.Zero(t, kb.ArticleCalls("de", "Douglas Adams"))
	})

	t.Run("existing article", func(t *testing.T) {
		kb := adamsKB().Page("en", "Towel Day", "")
		v := newValidator(t, kb)
		assert.Nil(t, v.WikipediaExists(ctx, feature.Tags{"wikipedia": "en:Towel Day"}))
	})

	t.Run("missing article with replacement", func(t *testing.T) {
		v := newValidator(t, adamsKB(), "pl")
		tags := feature.Tags{"wikidata": "Q42", "wikipedia": "en:Douglas Adamz"}
		r := v.WikipediaExists(ctx, tags)
		require.NotNil(t, r)
		assert.Equal(t, IDWikipedia404, r.ErrorID)
		assert.Equal(t, "pl:Douglas Adams", r.DesiredLinkTarget)
		require.Len(t, r.ProposedChanges, 1)
		assert.Equal(t, transaction.Values{"wikipedia": transaction.Str("en:Douglas Adamz")}, r.ProposedChanges[0].From)
	})

	t.Run("missing article without wikidata", func(t *testing.T) {
		v := newValidator(t, adamsKB())
		r := v.WikipediaExists(ctx, feature.Tags{"wikipedia": "en:Nowhere"})
		require.NotNil(t, r)
		assert.Empty(t, r.ProposedChanges)
		assert.Empty(t, r.DesiredLinkTarget)
	})

	t.Run("lookup failure fails open", func(t *testing.T) {
		kb := adamsKB().Fail("en:Nowhere", errors.ErrRateLimited)
		v := newValidator(t, kb)
		assert.Nil(t, v.WikipediaExists(ctx, feature.Tags{"wikipedia": "en:Nowhere"}))
	})
}

func TestMismatch(t *testing.T) {
	kb := adamsKB().
		RedirectEntity("Q100", "Q42").
		RedirectArticle("en", "Douglas Noel Adams", "Douglas Adams").
		Sitelink("Q2", "en", "Earth").
		InstanceOf("Q2", "Q3504248").
		Page("en", "Unconnected", "")
	v := newValidator(t, kb)
	ctx := context.Background()

	assert.Nil(t, v.Mismatch(ctx, feature.Tags{"wikidata": "Q42", "wikipedia": "en:Douglas Adams"}))
	assert.Nil(t, v.Mismatch(ctx, feature.Tags{"wikidata": "Q42", "wikipedia": "en:Unconnected"}), "article without item")
	assert.Nil(t, v.Mismatch(ctx, feature.Tags{"wikidata": "Q42"}))

	t.Run("wikidata redirect", func(t *testing.T) {
		tags := feature.Tags{"wikidata": "Q100", "wikipedia": "en:Douglas Adams"}
		r := v.Mismatch(ctx, tags)
		require.NotNil(t, r)
		assert.Equal(t, IDMismatchWikidataRedirect, r.ErrorID)
		assert.Equal(t, "Q42", r.DesiredLinkTarget)
		require.NoError(t, r.ProposedChanges[0].Apply(tags))
		assert.Equal(t, "Q42", tags["wikidata"])
	})

	t.Run("wikipedia redirect keeps the section", func(t *testing.T) {
		tags := feature.Tags{"wikidata": "Q42", "wikipedia": "en:Douglas Noel Adams#Early life"}
		r := v.Mismatch(ctx, tags)
		require.NotNil(t, r)
		assert.Equal(t, IDMismatchWikipediaRedirect, r.ErrorID)
		assert.Equal(t, "en:Douglas Adams#Early life", r.DesiredLinkTarget)
		require.NoError(t, r.ProposedChanges[0].Apply(tags))
		assert.Equal(t, "en:Douglas Adams#Early life", tags["wikipedia"])
	})

	t.Run("unexplained mismatch needs a human", func(t *testing.T) {
		r := v.Mismatch(ctx, feature.Tags{"wikidata": "Q42", "wikipedia": "en:Earth"})
		require.NotNil(t, r)
		assert.Equal(t, IDMismatch, r.ErrorID)
		assert.Empty(t, r.ProposedChanges)
		assert.Contains(t, r.Extra.Value, "Q2")
	})
}

func TestLegacyForm(t *testing.T) {
	kb := wikitest.New().
		Sitelink("Q64", "de", "Berlin").
		Sitelink("Q64", "en", "Berlin").
		Sitelink("Q64", "pl", "Berlin").
		Sitelink("Q1055", "de", "Hamburg")
	v := newValidator(t, kb)
	ctx := context.Background()

	assert.Nil(t, v.LegacyForm(ctx, feature.Tags{"wikipedia": "de:Berlin"}))

	t.Run("agreeing legacy tags fold into one link", func(t *testing.T) {
		tags := feature.Tags{"wikipedia:de": "Berlin", "wikipedia:pl": "pl:Berlin", "name": "Berlin"}
		r := v.LegacyForm(ctx, tags)
		require.NotNil(t, r)
		assert.Equal(t, IDLegacyForm, r.ErrorID)
		assert.Equal(t, "de:Berlin", r.DesiredLinkTarget, "de ranks above pl")
		require.Len(t, r.ProposedChanges, 1)

		require.NoError(t, r.ProposedChanges[0].Apply(tags))
		assert.Equal(t, feature.Tags{"wikipedia": "de:Berlin", "name": "Berlin"}, tags)
		assert.Empty(t, LegacyKeys(tags))
	})

	t.Run("duplicate of the canonical link is removed", func(t *testing.T) {
		tags := feature.Tags{"wikipedia": "en:Berlin", "wikipedia:de": "Berlin"}
		r := v.LegacyForm(ctx, tags)
		require.NotNil(t, r)
		assert.Equal(t, IDLegacyDuplicated, r.ErrorID)
		require.True(t, r.Prerequisite.Holds(tags))

		require.NoError(t, r.ProposedChanges[0].Apply(tags))
		assert.Equal(t, feature.Tags{"wikipedia": "en:Berlin"}, tags)
	})

	t.Run("disagreeing links", func(t *testing.T) {
		r := v.LegacyForm(ctx, feature.Tags{"wikipedia:de": "Hamburg", "wikipedia:en": "Berlin"})
		require.NotNil(t, r)
		assert.Equal(t, IDLegacyMismatch, r.ErrorID)
		assert.Empty(t, r.ProposedChanges)
		assert.Equal(t, "de:Hamburg -> Q1055; en:Berlin -> Q64", r.Extra.Value)
	})

	t.Run("disagreeing with the canonical link", func(t *testing.T) {
		r := v.LegacyForm(ctx, feature.Tags{"wikipedia:de": "Hamburg", "wikipedia": "en:Berlin"})
		require.NotNil(t, r)
		assert.Equal(t, IDLegacyMismatch, r.ErrorID)
	})

	t.Run("legacy link to a missing article", func(t *testing.T) {
		r := v.LegacyForm(ctx, feature.Tags{"wikipedia:de": "Nirgendwo", "wikipedia:en": "Berlin"})
		require.NotNil(t, r)
		assert.Equal(t, IDLegacy404, r.ErrorID)
		assert.Equal(t, "de:Nirgendwo", r.Extra.Value)
		assert.Empty(t, r.ProposedChanges)
	})

	t.Run("missing canonical link is left to the existence check", func(t *testing.T) {
		assert.Nil(t, v.LegacyForm(ctx, feature.Tags{"wikipedia:de": "Berlin", "wikipedia": "en:Nowhere"}))
	})
}

func TestLegacyFormComparesWikidata(t *testing.T) {
	kb := wikitest.New().
		Sitelink("Q64", "de", "Berlin").
		Sitelink("Q1055", "de", "Hamburg").
		RedirectEntity("Q821244", "Q64")
	v := newValidator(t, kb)
	ctx := context.Background()

	tests := []struct {
		name string
		tags feature.Tags
		want string
	}{
		{"same item", feature.Tags{"wikipedia:de": "Berlin", "wikidata": "Q64"}, IDLegacyForm},
		{"item through a redirect", feature.Tags{"wikipedia:de": "Berlin", "wikidata": "Q821244"}, IDLegacyForm},
		{"other item", feature.Tags{"wikipedia:de": "Berlin", "wikidata": "Q1055"}, IDLegacyMismatch},
		{"missing item", feature.Tags{"wikipedia:de": "Berlin", "wikidata": "Q404"}, IDLegacyForm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.LegacyForm(ctx, tt.tags)
			require.NotNil(t, r)
			assert.Equal(t, tt.want, r.ErrorID)
		})
	}

	r := v.LegacyForm(ctx, feature.Tags{"wikipedia:de": "Berlin", "wikidata": "Q1055"})
	require.NotNil(t, r)
	assert.Equal(t, "de:Berlin -> Q64; wikidata -> Q1055", r.Extra.Value)
	assert.True(t, r.Prerequisite.Holds(map[string]string{"wikipedia:de": "Berlin", "wikidata": "Q1055"}))
}

func TestLegacyFormFailsOpen(t *testing.T) {
	ctx := context.Background()

	kb := wikitest.New().
		Sitelink("Q64", "de", "Berlin").
		Fail("de:Berlin", errors.ErrServiceUnavailable)
	assert.Nil(t, newValidator(t, kb).LegacyForm(ctx, feature.Tags{"wikipedia:de": "Berlin"}))

	kb = wikitest.New().
		Sitelink("Q64", "de", "Berlin").
		Fail("Q1055", errors.ErrServiceUnavailable)
	assert.Nil(t, newValidator(t, kb).LegacyForm(ctx, feature.Tags{"wikipedia:de": "Berlin", "wikidata": "Q1055"}))
}
