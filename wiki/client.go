package wiki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/internal/httpclient"
	"github.com/teranos/wdlint/logger"
)

// Default API endpoints. The Wikipedia template carries a {lang} placeholder.
const (
	DefaultWikidataAPI          = "https://www.wikidata.org/w/api.php"
	DefaultWikipediaAPITemplate = "https://{lang}.wikipedia.org/w/api.php"
)

// Client fetches entities and articles from the live MediaWiki APIs.
type Client struct {
	http                 *httpclient.SaferClient
	wikidataAPI          string
	wikipediaAPITemplate string
	logger               *zap.SugaredLogger
}

// NewClient creates a Client. Empty endpoints fall back to the public ones.
func NewClient(hc *httpclient.SaferClient, wikidataAPI, wikipediaAPITemplate string, log *zap.SugaredLogger) *Client {
	if wikidataAPI == "" {
		wikidataAPI = DefaultWikidataAPI
	}
	if wikipediaAPITemplate == "" {
		wikipediaAPITemplate = DefaultWikipediaAPITemplate
	}
	return &Client{
		http:                 hc,
		wikidataAPI:          wikidataAPI,
		wikipediaAPITemplate: wikipediaAPITemplate,
		logger:               logger.OrNop(log).With(logger.FieldComponent, "wiki.client"),
	}
}

// Entity fetches one item through wbgetentities. Redirected items come back
// under their target id.
func (c *Client) Entity(ctx context.Context, id string, _ bool) (*Entity, error) {
	q := url.Values{}
	q.Set("action", "wbgetentities")
	q.Set("ids", id)
	q.Set("props", "labels|claims|sitelinks")
	q.Set("languages", "en")
	q.Set("format", "json")

	var resp wbEntitiesResponse
	found, err := c.getJSON(ctx, c.wikidataAPI+"?"+q.Encode(), &resp)
	if err != nil || !found {
		return nil, errors.Wrapf(err, "fetch entity %s", id)
	}
	if resp.Error != nil {
		if resp.Error.Code == "no-such-entity" {
			return nil, nil
		}
		return nil, errors.Newf("wikidata api: %s: %s", resp.Error.Code, resp.Error.Info)
	}
	for _, raw := range resp.Entities {
		if raw.Missing != nil {
			return nil, nil
		}
		return raw.toEntity(), nil
	}
	return nil, nil
}

// Article resolves a page through the query API, following redirects.
func (c *Client) Article(ctx context.Context, lang, title string, _ bool) (*Article, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("titles", title)
	q.Set("redirects", "1")
	q.Set("prop", "pageprops")
	q.Set("ppprop", "wikibase_item")
	q.Set("format", "json")
	q.Set("formatversion", "2")

	endpoint := strings.ReplaceAll(c.wikipediaAPITemplate, "{lang}", url.PathEscape(lang))
	var resp queryResponse
	found, err := c.getJSON(ctx, endpoint+"?"+q.Encode(), &resp)
	if err != nil || !found {
		return nil, errors.Wrapf(err, "fetch article %s:%s", lang, title)
	}
	if len(resp.Query.Pages) == 0 {
		return nil, nil
	}
	page := resp.Query.Pages[0]
	if page.Missing || page.Invalid {
		return nil, nil
	}

	article := &Article{
		Lang:     lang,
		Title:    page.Title,
		EntityID: page.PageProps.WikibaseItem,
	}
	if len(resp.Query.Redirects) > 0 {
		article.RedirectedFrom = resp.Query.Redirects[0].From
	}
	return article, nil
}

// getJSON decodes a 200 response into out. A 404 reports found=false.
func (c *Client) getJSON(ctx context.Context, u string, out interface{}) (found bool, err error) {
	start := time.Now()
	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return false, errors.Wrap(errors.ErrServiceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	c.logger.Debugw("api request",
		logger.FieldURL, u,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, errors.ErrRateLimited
	case resp.StatusCode >= 500:
		return false, errors.Wrapf(errors.ErrServiceUnavailable, "status %d", resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, errors.Newf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, errors.Wrap(err, "decode response")
	}
	return true, nil
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type wbEntitiesResponse struct {
	Entities map[string]wbEntity `json:"entities"`
	Error    *apiError           `json:"error"`
}

type wbEntity struct {
	ID      string  `json:"id"`
	Missing *string `json:"missing"`
	Labels  map[string]struct {
		Value string `json:"value"`
	} `json:"labels"`
	Claims    map[string][]wbClaim `json:"claims"`
	Sitelinks map[string]struct {
		Title string `json:"title"`
	} `json:"sitelinks"`
}

type wbClaim struct {
	Rank     string `json:"rank"`
	Mainsnak struct {
		SnakType  string `json:"snaktype"`
		DataValue struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// nonWikipediaSites end in "wiki" but are not language editions.
var nonWikipediaSites = map[string]bool{
	"commons": true, "species": true, "meta": true, "wikidata": true,
	"mediawiki": true, "sources": true, "incubator": true, "outreach": true,
	"wikimania": true, "wikifunctions": true, "foundation": true,
}

func (w wbEntity) toEntity() *Entity {
	e := &Entity{
		ID:        w.ID,
		Labels:    make(map[string]string, len(w.Labels)),
		Claims:    make(map[string][]string, len(w.Claims)),
		Sitelinks: make(map[string]string, len(w.Sitelinks)),
	}
	for lang, l := range w.Labels {
		e.Labels[lang] = l.Value
	}
	for prop, claims := range w.Claims {
		for _, claim := range claims {
			if claim.Rank == "deprecated" {
				continue
			}
			if v, ok := claim.value(); ok {
				e.Claims[prop] = append(e.Claims[prop], v)
			}
		}
	}
	for site, link := range w.Sitelinks {
		prefix, ok := strings.CutSuffix(site, "wiki")
		if !ok || prefix == "" || nonWikipediaSites[prefix] {
			continue
		}
		e.Sitelinks[strings.ReplaceAll(prefix, "_", "-")] = link.Title
	}
	return e
}

// value flattens a snak to a string: item ids, plain strings, time
// stamps, and "?" for an unknown value. novalue snaks are dropped.
func (c wbClaim) value() (string, bool) {
	switch c.Mainsnak.SnakType {
	case "somevalue":
		return "?", true
	case "value":
	default:
		return "", false
	}

	dv := c.Mainsnak.DataValue
	switch dv.Type {
	case "wikibase-entityid":
		var v struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(dv.Value, &v) == nil && v.ID != "" {
			return v.ID, true
		}
	case "string":
		var v string
		if json.Unmarshal(dv.Value, &v) == nil {
			return v, true
		}
	case "time":
		var v struct {
			Time string `json:"time"`
		}
		if json.Unmarshal(dv.Value, &v) == nil {
			return v.Time, true
		}
	}
	return dv.Type, dv.Type != ""
}

type queryResponse struct {
	Query struct {
		Redirects []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"redirects"`
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Invalid   bool   `json:"invalid"`
			PageProps struct {
				WikibaseItem string `json:"wikibase_item"`
			} `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
}
