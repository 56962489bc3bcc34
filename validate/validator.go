package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/logger"
	"github.com/teranos/wdlint/report"
	"github.com/teranos/wdlint/tables"
	"github.com/teranos/wdlint/transaction"
	"github.com/teranos/wdlint/wiki"
)

// bestLinkMemoSize bounds the per-entity best-link memo.
const bestLinkMemoSize = 8192

// Validator runs the checks that need the knowledge base.
type Validator struct {
	resolver   wiki.Resolver
	tables     *tables.Tables
	preference []string
	best       *lru.Cache
	logger     *zap.SugaredLogger
}

// New creates a Validator. languages are the caller's preferred languages,
// tried before the global importance order.
func New(r wiki.Resolver, t *tables.Tables, languages []string, log *zap.SugaredLogger) (*Validator, error) {
	best, err := lru.New(bestLinkMemoSize)
	if err != nil {
		return nil, errors.Wrap(err, "create best link memo")
	}
	return &Validator{
		resolver:   r,
		tables:     t,
		preference: t.Preference(languages),
		best:       best,
		logger:     logger.OrNop(log).With(logger.FieldComponent, "validate"),
	}, nil
}

type bestLink struct {
	link wiki.Link
	ok   bool
}

// BestLink returns the article for id in the first preferred language that
// has one. Answers are memoised per entity; failed lookups are not.
func (v *Validator) BestLink(ctx context.Context, id string) (wiki.Link, bool) {
	if cached, ok := v.best.Get(id); ok {
		b := cached.(bestLink)
		return b.link, b.ok
	}
	e, err := v.resolver.Entity(ctx, id, false)
	if err != nil {
		v.unknown("best link", id, err)
		return wiki.Link{}, false
	}
	var result bestLink
	for _, lang := range v.preference {
		if title := e.Sitelink(lang); title != "" {
			result = bestLink{link: wiki.Link{Lang: lang, Title: title}, ok: true}
			break
		}
	}
	v.best.Add(id, result)
	return result.link, result.ok
}

// EffectiveWikidata is the wikidata tag, or the item of the wikipedia
// article when the tag is absent.
func (v *Validator) EffectiveWikidata(ctx context.Context, tags feature.Tags) string {
	if id := tags.Get(KeyWikidata); id != "" {
		return id
	}
	link, ok := wiki.ParseLink(tags.Get(KeyWikipedia))
	if !ok {
		return ""
	}
	id, err := v.resolver.EntityIDForArticle(ctx, link.Lang, link.Title)
	if err != nil {
		v.unknown("effective wikidata", link.String(), err)
		return ""
	}
	return id
}

// EffectiveLink is the wikipedia tag, or the best link of id when the tag
// is absent.
func (v *Validator) EffectiveLink(ctx context.Context, tags feature.Tags, id string) (wiki.Link, bool) {
	if link, ok := wiki.ParseLink(tags.Get(KeyWikipedia)); ok {
		return link, true
	}
	if id == "" {
		return wiki.Link{}, false
	}
	return v.BestLink(ctx, id)
}

// WikidataExists reports a wikidata tag naming an item that does not exist.
// When the wikipedia tag leads to an item, that item is proposed instead.
func (v *Validator) WikidataExists(ctx context.Context, tags feature.Tags) *report.Report {
	id, ok := tags[KeyWikidata]
	if !ok {
		return nil
	}
	e, err := v.resolver.Entity(ctx, id, false)
	if err != nil {
		v.unknown("wikidata exists", id, err)
		return nil
	}
	if e != nil {
		return nil
	}

	r := &report.Report{
		ErrorID:      IDWikidata404,
		Message:      fmt.Sprintf("wikidata=%s links to an item that does not exist", id),
		Prerequisite: transaction.Values{KeyWikidata: transaction.Str(id)},
	}
	if link, ok := wiki.ParseLink(tags.Get(KeyWikipedia)); ok {
		replacement, err := v.resolver.EntityIDForArticle(ctx, link.Lang, link.Title)
		if err != nil {
			v.unknown("wikidata replacement", link.String(), err)
		}
		if replacement != "" && replacement != id {
			r.DesiredLinkTarget = replacement
			r.ProposedChanges = []transaction.Transaction{{
				From: transaction.Values{KeyWikidata: transaction.Str(id)},
				To:   transaction.Values{KeyWikidata: transaction.Str(replacement)},
			}}
		}
	}
	return r
}

// WikipediaExists reports a wikipedia tag naming an article that does not
// exist. When the wikidata item lists the same title for the language, the
// article is taken to exist without fetching it.
func (v *Validator) WikipediaExists(ctx context.Context, tags feature.Tags) *report.Report {
	value, ok := tags[KeyWikipedia]
	if !ok {
		return nil
	}
	link, ok := wiki.ParseLink(value)
	if !ok {
		return nil
	}
	id := tags.Get(KeyWikidata)
	if id != "" {
		title, err := v.resolver.InterwikiTitleByID(ctx, id, link.Lang)
		if err != nil {
			v.unknown("interwiki title", id, err)
		}
		if title != "" && wiki.NormalizeTitle(title) == wiki.NormalizeTitle(link.Title) {
			return nil
		}
	}

	a, err := v.resolver.Article(ctx, link.Lang, link.Title, false)
	if err != nil {
		v.unknown("wikipedia exists", link.String(), err)
		return nil
	}
	if a != nil {
		return nil
	}

	r := &report.Report{
		ErrorID:      IDWikipedia404,
		Message:      fmt.Sprintf("wikipedia=%q links to an article that does not exist", value),
		Prerequisite: transaction.Values{KeyWikipedia: transaction.Str(value)},
	}
	if id != "" {
		if best, ok := v.BestLink(ctx, id); ok {
			r.DesiredLinkTarget = best.String()
			r.ProposedChanges = []transaction.Transaction{{
				From: transaction.Values{KeyWikipedia: transaction.Str(value)},
				To:   transaction.Values{KeyWikipedia: transaction.Str(best.String())},
			}}
		}
	}
	return r
}

// Mismatch compares the item of the wikipedia article (after redirects) with
// the wikidata tag. A mismatch explained by a redirect on either side gets
// a fix; an unexplained one is left to a human.
func (v *Validator) Mismatch(ctx context.Context, tags feature.Tags) *report.Report {
	id, hasID := tags[KeyWikidata]
	value, hasLink := tags[KeyWikipedia]
	if !hasID || !hasLink {
		return nil
	}
	link, ok := wiki.ParseLink(value)
	if !ok {
		return nil
	}

	a, err := v.resolver.Article(ctx, link.Lang, link.Title, false)
	if err != nil {
		v.unknown("mismatch article", link.String(), err)
		return nil
	}
	if a == nil || a.EntityID == "" {
		return nil
	}
	e, err := v.resolver.Entity(ctx, id, false)
	if err != nil {
		v.unknown("mismatch entity", id, err)
		return nil
	}
	if e == nil {
		return nil
	}

	prereq := transaction.Values{
		KeyWikidata:  transaction.Str(id),
		KeyWikipedia: transaction.Str(value),
	}
	switch {
	case a.EntityID == e.ID && e.ID != id:
		return &report.Report{
			ErrorID:           IDMismatchWikidataRedirect,
			Message:           fmt.Sprintf("wikidata=%s is a redirect to %s, which %s links to", id, e.ID, link),
			Prerequisite:      prereq,
			DesiredLinkTarget: e.ID,
			ProposedChanges: []transaction.Transaction{{
				From: transaction.Values{KeyWikidata: transaction.Str(id)},
				To:   transaction.Values{KeyWikidata: transaction.Str(e.ID)},
			}},
		}
	case a.EntityID == id && a.IsRedirect():
		target := wiki.Link{Lang: link.Lang, Title: a.Title, Section: link.Section}
		fixed := target.String()
		if target.Section != "" {
			fixed += "#" + target.Section
		}
		return &report.Report{
			ErrorID:           IDMismatchWikipediaRedirect,
			Message:           fmt.Sprintf("wikipedia=%q is a redirect to %q, which matches wikidata=%s", value, a.Title, id),
			Prerequisite:      prereq,
			DesiredLinkTarget: fixed,
			ProposedChanges: []transaction.Transaction{{
				From: transaction.Values{KeyWikipedia: transaction.Str(value)},
				To:   transaction.Values{KeyWikipedia: transaction.Str(fixed)},
			}},
		}
	case a.EntityID == id || a.EntityID == e.ID:
		return nil
	}
	return &report.Report{
		ErrorID:      IDMismatch,
		Message:      fmt.Sprintf("wikidata=%s but wikipedia=%q belongs to %s", id, value, a.EntityID),
		Prerequisite: prereq,
		Extra:        report.Conflict(fmt.Sprintf("wikidata %s vs %s (%s)", id, a.EntityID, link)),
	}
}

// LegacyForm handles wikipedia:<lang> keys. Links that all lead to one item
// (and to the item of the wikidata tag, when there is one) are folded into a
// single wikipedia tag. Disagreeing links need a human, and so do legacy
// links to articles that do not exist.
func (v *Validator) LegacyForm(ctx context.Context, tags feature.Tags) *report.Report {
	keys := LegacyKeys(tags)
	if len(keys) == 0 {
		return nil
	}

	type resolved struct {
		link wiki.Link
		id   string
	}
	var links []resolved
	for _, k := range keys {
		links = append(links, resolved{link: legacyLink(k, tags[k])})
	}
	canonical, hasCanonical := wiki.ParseLink(tags.Get(KeyWikipedia))

	ids := make(map[string]bool)
	var missing []string
	for i := range links {
		id, err := v.resolver.EntityIDForArticle(ctx, links[i].link.Lang, links[i].link.Title)
		if err != nil {
			v.unknown("legacy link", links[i].link.String(), err)
			return nil
		}
		if id == "" {
			missing = append(missing, links[i].link.String())
			continue
		}
		links[i].id = id
		ids[id] = true
	}
	if hasCanonical {
		id, err := v.resolver.EntityIDForArticle(ctx, canonical.Lang, canonical.Title)
		if err != nil {
			v.unknown("legacy canonical link", canonical.String(), err)
			return nil
		}
		if id == "" {
			// a dangling wikipedia tag is reported by WikipediaExists
			return nil
		}
		links = append(links, resolved{link: canonical, id: id})
		ids[id] = true
	}

	prereq := transaction.Values{}
	for _, k := range keys {
		prereq[k] = transaction.Str(tags[k])
	}
	if hasCanonical {
		prereq[KeyWikipedia] = transaction.Str(tags[KeyWikipedia])
	} else {
		prereq[KeyWikipedia] = nil
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &report.Report{
			ErrorID:      IDLegacy404,
			Message:      fmt.Sprintf("outdated wikipedia tags link to articles that do not exist or have no Wikidata item: %s", strings.Join(missing, ", ")),
			Prerequisite: prereq,
			Extra:        report.Conflict(strings.Join(missing, "; ")),
		}
	}

	var parts []string
	for _, l := range links {
		parts = append(parts, fmt.Sprintf("%s -> %s", l.link, l.id))
	}
	wikidataAgrees, known := v.wikidataAgrees(ctx, tags, ids)
	if !known {
		return nil
	}
	if !wikidataAgrees {
		id := tags[KeyWikidata]
		prereq[KeyWikidata] = transaction.Str(id)
		parts = append(parts, fmt.Sprintf("wikidata -> %s", id))
	}

	if len(ids) > 1 || !wikidataAgrees {
		sort.Strings(parts)
		return &report.Report{
			ErrorID:      IDLegacyMismatch,
			Message:      "the outdated wikipedia:<language> tags do not all lead to the same Wikidata item",
			Prerequisite: prereq,
			Extra:        report.Conflict(strings.Join(parts, "; ")),
		}
	}

	from := transaction.Values{}
	for _, k := range keys {
		from[k] = transaction.Str(tags[k])
	}
	if hasCanonical {
		return &report.Report{
			ErrorID:         IDLegacyDuplicated,
			Message:         fmt.Sprintf("%s duplicate wikipedia=%q", strings.Join(keys, ", "), tags[KeyWikipedia]),
			Prerequisite:    prereq,
			ProposedChanges: []transaction.Transaction{{From: from, To: transaction.Values{}}},
		}
	}

	chosen := v.preferredLegacy(links[0].link, keys, tags)
	from[KeyWikipedia] = nil
	return &report.Report{
		ErrorID:           IDLegacyForm,
		Message:           fmt.Sprintf("%s should be replaced by wikipedia=%q", strings.Join(keys, ", "), chosen.String()),
		Prerequisite:      prereq,
		DesiredLinkTarget: chosen.String(),
		ProposedChanges: []transaction.Transaction{{
			From: from,
			To:   transaction.Values{KeyWikipedia: transaction.Str(chosen.String())},
		}},
	}
}

// wikidataAgrees reports whether the wikidata tag, if present and well
// formed, names (possibly through a redirect) one of ids. known is false when
// the lookup failed.
func (v *Validator) wikidataAgrees(ctx context.Context, tags feature.Tags, ids map[string]bool) (agrees, known bool) {
	id := tags.Get(KeyWikidata)
	if !wiki.IsEntityID(id) || ids[id] {
		return true, true
	}
	e, err := v.resolver.Entity(ctx, id, false)
	if err != nil {
		v.unknown("legacy wikidata", id, err)
		return false, false
	}
	if e == nil {
		// a dangling wikidata tag is reported by WikidataExists
		return true, true
	}
	return ids[e.ID], true
}

// preferredLegacy picks the legacy link in the most preferred language.
func (v *Validator) preferredLegacy(fallback wiki.Link, keys []string, tags feature.Tags) wiki.Link {
	byLang := make(map[string]wiki.Link, len(keys))
	for _, k := range keys {
		l := legacyLink(k, tags[k])
		byLang[l.Lang] = l
	}
	for _, lang := range v.preference {
		if l, ok := byLang[lang]; ok {
			return l
		}
	}
	return fallback
}

func (v *Validator) unknown(check, subject string, err error) {
	v.logger.Warnw("lookup failed, assuming no problem",
		logger.FieldStage, check,
		logger.FieldEntityID, subject,
		logger.FieldError, err,
	)
}
