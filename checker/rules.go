package checker

import (
	"context"
	"fmt"
	"strings"

	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/logger"
	"github.com/teranos/wdlint/report"
	"github.com/teranos/wdlint/transaction"
	"github.com/teranos/wdlint/validate"
	"github.com/teranos/wdlint/wiki"
)

// Report ids produced by this package.
const (
	IDBlacklisted           = "blacklisted connection with known replacement"
	IDUnlinkable            = "link to an unlinkable article"
	IDUnexpectedLanguage    = "wikipedia tag unexpected language"
	IDNoLongerExists        = "no longer existing object"
	IDWikipediaFromWikidata = "wikipedia from wikidata tag"
	IDWikidataFromWikipedia = "wikidata from wikipedia tag"
)

// SecondaryTagID is the report id for an item that must be linked through
// a secondary tag. label is the category label, e.g. "a human".
func SecondaryTagID(label string) string {
	return "should use a secondary wikipedia tag - linking to " + label
}

// lifecyclePrefixes mark a feature as describing something that is gone.
var lifecyclePrefixes = []string{
	"disused:", "abandoned:", "was:", "demolished:", "razed:", "removed:", "destroyed:",
}

// prerequisite pins the primary link tags as they are now.
func prerequisite(tags feature.Tags) transaction.Values {
	p := transaction.Values{}
	for _, k := range []string{validate.KeyWikidata, validate.KeyWikipedia} {
		if v, ok := tags[k]; ok {
			p[k] = transaction.Str(v)
		} else {
			p[k] = nil
		}
	}
	return p
}

func (c *Checker) blacklisted(_ context.Context, s *subject) *report.Report {
	if s.id == "" {
		return nil
	}
	entry, ok := c.tables.Blacklisted(s.id)
	if !ok {
		return nil
	}
	r := &report.Report{
		ErrorID:      IDBlacklisted,
		Message:      fmt.Sprintf("%s (%s) should not be the primary link, use %swikidata", s.id, entry.Name, entry.Prefix),
		Prerequisite: prerequisite(s.tags),
		Extra:        report.Prefix(entry.Prefix),
	}
	if s.tags.Get(validate.KeyWikidata) != s.id || !entry.Matches(s.tags) {
		return r
	}

	secondary := entry.Prefix + validate.KeyWikidata
	from := transaction.Values{validate.KeyWikidata: transaction.Str(s.id)}
	if v, ok := s.tags[validate.KeyWikipedia]; ok {
		from[validate.KeyWikipedia] = transaction.Str(v)
	}
	switch current, ok := s.tags[secondary]; {
	case !ok:
		r.ProposedChanges = []transaction.Transaction{{
			From: from,
			To:   transaction.Values{secondary: transaction.Str(s.id)},
		}}
	case current == s.id:
		r.ProposedChanges = []transaction.Transaction{{From: from, To: transaction.Values{}}}
	}
	return r
}

func (c *Checker) unlinkable(ctx context.Context, s *subject) *report.Report {
	if s.id == "" {
		return nil
	}
	desc, ok := c.classifier.Unlinkable(ctx, s.id)
	if !ok {
		return nil
	}
	return &report.Report{
		ErrorID:      IDUnlinkable,
		Message:      fmt.Sprintf("%s is %s", c.describe(s), desc),
		Prerequisite: prerequisite(s.tags),
	}
}

func (c *Checker) secondaryTag(ctx context.Context, s *subject) *report.Report {
	if s.id == "" || c.classifier.IsAllowed(s.id) {
		return nil
	}
	found := c.classifier.Classify(ctx, s.id)
	if found == nil {
		found = c.classifier.PropertyDisqualification(ctx, s.id)
	}
	if found == nil {
		return nil
	}
	r := &report.Report{
		ErrorID:      SecondaryTagID(found.Label),
		Message:      fmt.Sprintf("%s is %s (%s), it cannot be the primary subject of a map feature", c.describe(s), found.Label, found.ID),
		Prerequisite: prerequisite(s.tags),
	}
	if found.Prefix != "" {
		r.Extra = report.Prefix(found.Prefix)
		r.Message += fmt.Sprintf(", consider %swikidata", found.Prefix)
	}
	return r
}

func (c *Checker) unexpectedLanguage(ctx context.Context, s *subject) *report.Report {
	expected := c.expectedLanguage()
	value, ok := s.tags[validate.KeyWikipedia]
	if expected == "" || !ok || !s.hasLink || s.link.Lang == expected || s.id == "" {
		return nil
	}
	title, err := c.resolver.InterwikiTitleByID(ctx, s.id, expected)
	if err != nil {
		c.logger.Warnw("interwiki lookup failed",
			logger.FieldEntityID, s.id,
			logger.FieldLang, expected,
			logger.FieldError, err,
		)
		return nil
	}
	if title == "" {
		return nil
	}
	want := wiki.Link{Lang: expected, Title: title}
	return &report.Report{
		ErrorID:           IDUnexpectedLanguage,
		Message:           fmt.Sprintf("wikipedia=%q is not in %s, %q exists", value, expected, want.String()),
		Prerequisite:      prerequisite(s.tags),
		DesiredLinkTarget: want.String(),
		ProposedChanges: []transaction.Transaction{{
			From: transaction.Values{validate.KeyWikipedia: transaction.Str(value)},
			To:   transaction.Values{validate.KeyWikipedia: transaction.Str(want.String())},
		}},
		Extra: report.Language(expected),
	}
}

func (c *Checker) noLongerExists(ctx context.Context, s *subject) *report.Report {
	if s.id == "" || describesThePast(s.tags) {
		return nil
	}
	dissolved, err := c.resolver.Property(ctx, s.id, wiki.PropDissolved)
	if err != nil {
		c.logger.Warnw("property lookup failed",
			logger.FieldEntityID, s.id,
			logger.FieldProperty, wiki.PropDissolved,
			logger.FieldError, err,
		)
		return nil
	}
	if len(dissolved) == 0 {
		return nil
	}
	return &report.Report{
		ErrorID:      IDNoLongerExists,
		Message:      fmt.Sprintf("%s ended at %s but the feature is not tagged as historic", c.describe(s), dissolved[0]),
		Prerequisite: prerequisite(s.tags),
	}
}

func describesThePast(tags feature.Tags) bool {
	if tags.Has("historic") || tags.Get("ruins") == "yes" {
		return true
	}
	for k := range tags {
		for _, p := range lifecyclePrefixes {
			if strings.HasPrefix(k, p) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) wikipediaFromWikidata(ctx context.Context, s *subject) *report.Report {
	id, ok := s.tags[validate.KeyWikidata]
	if !ok || s.tags.Has(validate.KeyWikipedia) {
		return nil
	}
	link, ok := c.validator.BestLink(ctx, id)
	if !ok {
		return nil
	}
	return &report.Report{
		ErrorID:           IDWikipediaFromWikidata,
		Message:           fmt.Sprintf("wikipedia tag can be added from wikidata=%s", id),
		Prerequisite:      prerequisite(s.tags),
		DesiredLinkTarget: link.String(),
		ProposedChanges: []transaction.Transaction{{
			From: transaction.Values{validate.KeyWikipedia: nil},
			To:   transaction.Values{validate.KeyWikipedia: transaction.Str(link.String())},
		}},
	}
}

func (c *Checker) wikidataFromWikipedia(_ context.Context, s *subject) *report.Report {
	value, ok := s.tags[validate.KeyWikipedia]
	if !ok || s.tags.Has(validate.KeyWikidata) || s.id == "" {
		return nil
	}
	return &report.Report{
		ErrorID:           IDWikidataFromWikipedia,
		Message:           fmt.Sprintf("wikidata tag can be added from wikipedia=%q", value),
		Prerequisite:      prerequisite(s.tags),
		DesiredLinkTarget: s.id,
		ProposedChanges: []transaction.Transaction{{
			From: transaction.Values{validate.KeyWikidata: nil},
			To:   transaction.Values{validate.KeyWikidata: transaction.Str(s.id)},
		}},
	}
}

// describe names the linked item for messages.
func (c *Checker) describe(s *subject) string {
	if s.hasLink {
		return fmt.Sprintf("%s (%s)", s.id, s.link.String())
	}
	return s.id
}
