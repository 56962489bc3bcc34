package wiki_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/wiki"
	"github.com/teranos/wdlint/wiki/wikitest"
)

func TestIsEntityID(t *testing.T) {
	valid := []string{"Q1", "Q42", "Q999999999999999999999999999999999999"}
	for _, id := range valid {
		assert.True(t, wiki.IsEntityID(id), id)
	}

	invalid := []string{"", "Saturn", "42", "q42", "Q", "Q42.", "Q42 ", " Q42", "Q4a2", "P31", "Q1;Q2"}
	for _, id := range invalid {
		assert.False(t, wiki.IsEntityID(id), id)
	}
}

func TestParseLink(t *testing.T) {
	tests := []struct {
		value string
		want  wiki.Link
		ok    bool
	}{
		{"en:Douglas Adams", wiki.Link{Lang: "en", Title: "Douglas Adams"}, true},
		{"pl:Kraków#Historia", wiki.Link{Lang: "pl", Title: "Kraków", Section: "Historia"}, true},
		{"de:Foo:Bar", wiki.Link{Lang: "de", Title: "Foo:Bar"}, true},
		{"Douglas Adams", wiki.Link{Title: "Douglas Adams"}, false},
		{":Foo", wiki.Link{Lang: "", Title: "Foo"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := wiki.ParseLink(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Douglas Adams", wiki.NormalizeTitle("douglas_Adams"))
	assert.Equal(t, "Łódź", wiki.NormalizeTitle(" łódź "))
	assert.Equal(t, "", wiki.NormalizeTitle(""))
	// NFD input composes to the same NFC string
	assert.Equal(t, wiki.NormalizeTitle("Café"), wiki.NormalizeTitle("Café"))

	a := wiki.Link{Lang: "en", Title: "Foo_bar"}
	assert.True(t, a.Equal(wiki.Link{Lang: "en", Title: "foo bar"}))
	assert.False(t, a.Equal(wiki.Link{Lang: "de", Title: "Foo bar"}))
	assert.Equal(t, "en:Foo_bar", a.String())
}

func TestEntityAccessors(t *testing.T) {
	var nilEntity *wiki.Entity
	assert.False(t, nilEntity.Has(wiki.PropInstanceOf))
	assert.Equal(t, "", nilEntity.Sitelink("en"))

	e := &wiki.Entity{
		ID:        "Q42",
		Labels:    map[string]string{"en": "Douglas Adams"},
		Claims:    map[string][]string{wiki.PropInstanceOf: {"Q5"}},
		Sitelinks: map[string]string{"en": "Douglas Adams"},
	}
	assert.True(t, e.Has(wiki.PropInstanceOf))
	assert.Equal(t, []string{"Q5"}, e.Values(wiki.PropInstanceOf))
	assert.Equal(t, "Douglas Adams", e.Label("pl"))
}

func TestDerivedResolver(t *testing.T) {
	kb := wikitest.New().
		InstanceOf("Q42", "Q5").
		Sitelink("Q42", "en", "Douglas Adams").
		Sitelink("Q42", "de", "Douglas Adams").
		RedirectArticle("en", "Douglas Noel Adams", "Douglas Adams").
		Fail("Q13", errors.ErrServiceUnavailable)
	r := kb.Resolver()
	ctx := context.Background()

	values, err := r.Property(ctx, "Q42", wiki.PropInstanceOf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q5"}, values)

	id, err := r.EntityIDForArticle(ctx, "en", "Douglas Noel Adams")
	require.NoError(t, err)
	assert.Equal(t, "Q42", id)

	title, err := r.InterwikiTitle(ctx, "en", "Douglas_Adams", "de")
	require.NoError(t, err)
	assert.Equal(t, "Douglas Adams", title)

	title, err = r.InterwikiTitleByID(ctx, "Q42", "fr")
	require.NoError(t, err)
	assert.Equal(t, "", title)

	missing, err := r.Entity(ctx, "Q999", false)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = r.Property(ctx, "Q13", wiki.PropInstanceOf)
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}

func TestArticleRedirect(t *testing.T) {
	kb := wikitest.New().
		Sitelink("Q1", "en", "Universe").
		RedirectArticle("en", "Cosmos", "Universe")

	a, err := kb.Article(context.Background(), "en", "cosmos", false)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.True(t, a.IsRedirect())
	assert.Equal(t, "Universe", a.Title)
	assert.Equal(t, "Cosmos", a.RedirectedFrom)
	assert.Equal(t, "Q1", a.EntityID)
}
