package wiki_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/internal/httpclient"
	"github.com/teranos/wdlint/wiki"
)

const douglasAdams = `{
  "entities": {
    "Q42": {
      "id": "Q42",
      "labels": {"en": {"language": "en", "value": "Douglas Adams"}},
      "claims": {
        "P31": [{"rank": "normal", "mainsnak": {"snaktype": "value", "datavalue": {"type": "wikibase-entityid", "value": {"entity-type": "item", "id": "Q5"}}}}],
        "P570": [{"rank": "normal", "mainsnak": {"snaktype": "value", "datavalue": {"type": "time", "value": {"time": "+2001-05-11T00:00:00Z"}}}}],
        "P106": [
          {"rank": "deprecated", "mainsnak": {"snaktype": "value", "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q1"}}}},
          {"rank": "normal", "mainsnak": {"snaktype": "novalue"}}
        ],
        "P576": [{"rank": "normal", "mainsnak": {"snaktype": "somevalue"}}]
      },
      "sitelinks": {
        "enwiki": {"site": "enwiki", "title": "Douglas Adams"},
        "be_x_oldwiki": {"site": "be_x_oldwiki", "title": "Дуглас Адамс"},
        "commonswiki": {"site": "commonswiki", "title": "Category:Douglas Adams"},
        "enwikiquote": {"site": "enwikiquote", "title": "Douglas Adams"}
      }
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *wiki.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	hc := httpclient.WrapClient(srv.Client(), httpclient.Options{})
	return wiki.NewClient(hc, srv.URL+"/wikidata/api.php", srv.URL+"/{lang}/api.php", nil)
}

func TestClientEntity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wikidata/api.php", r.URL.Path)
		assert.Equal(t, "wbgetentities", r.URL.Query().Get("action"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		switch r.URL.Query().Get("ids") {
		case "Q42":
			w.Write([]byte(douglasAdams))
		case "Q999":
			w.Write([]byte(`{"entities": {"Q999": {"id": "Q999", "missing": ""}}}`))
		case "Q0":
			w.Write([]byte(`{"error": {"code": "no-such-entity", "info": "Could not find an entity with the ID \"Q0\"."}}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	ctx := context.Background()

	e, err := client.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Q42", e.ID)
	assert.Equal(t, "Douglas Adams", e.Label("en"))
	assert.Equal(t, []string{"Q5"}, e.Values(wiki.PropInstanceOf))
	assert.Equal(t, []string{"+2001-05-11T00:00:00Z"}, e.Values("P570"))
	assert.False(t, e.Has("P106"), "deprecated and novalue claims are dropped")
	assert.Equal(t, []string{"?"}, e.Values(wiki.PropDissolved))
	assert.Equal(t, map[string]string{"en": "Douglas Adams", "be-x-old": "Дуглас Адамс"}, e.Sitelinks)

	missing, err := client.Entity(ctx, "Q999", false)
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = client.Entity(ctx, "Q0", false)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = client.Entity(ctx, "Q500", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}

func TestClientArticle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pl/api.php" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		require.Equal(t, "/en/api.php", r.URL.Path)
		switch r.URL.Query().Get("titles") {
		case "Douglas Noel Adams":
			w.Write([]byte(`{"query": {
				"redirects": [{"from": "Douglas Noel Adams", "to": "Douglas Adams"}],
				"pages": [{"pageid": 8091, "title": "Douglas Adams", "pageprops": {"wikibase_item": "Q42"}}]}}`))
		case "Nowhere":
			w.Write([]byte(`{"query": {"pages": [{"title": "Nowhere", "missing": true}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	a, err := client.Article(ctx, "en", "Douglas Noel Adams", false)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Douglas Adams", a.Title)
	assert.Equal(t, "Q42", a.EntityID)
	assert.True(t, a.IsRedirect())

	missing, err := client.Article(ctx, "en", "Nowhere", false)
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = client.Article(ctx, "en", "Gone", false)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = client.Article(ctx, "pl", "Kraków", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRateLimited))
}
