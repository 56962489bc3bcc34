package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/report"
	"github.com/teranos/wdlint/transaction"
	"github.com/teranos/wdlint/wiki"
)

// Languages is the language-code lookup the syntactic checks need.
type Languages interface {
	IsLanguage(code string) bool
}

var (
	semicolonListPattern = regexp.MustCompile(`^Q[0-9]+(;Q[0-9]+)*;?$`)
	lowerAlpha           = regexp.MustCompile(`^[a-z]+$`)
	rawPrefix            = regexp.MustCompile(`^[a-z]{2,3}:`)
	wikidataFixable      = regexp.MustCompile(`(?i)^\s*(?:https?://(?:www\.|m\.)?wikidata\.org/(?:wiki|entity)/)?(q[0-9]+)\s*$`)
	wikipediaURL         = regexp.MustCompile(`^https?://([a-z]{2,3})\.(?:m\.)?wikipedia\.org/wiki/(.+)$`)
	doublePrefix         = regexp.MustCompile(`^([a-z]{2,3}):([a-z]{2,3}):(.+)$`)
)

// WikidataClearlyBroken reports whether value is not a Wikidata item id.
func WikidataClearlyBroken(value string) bool {
	return !wiki.IsEntityID(value)
}

// WikipediaClearlyBroken reports whether a wikipedia tag value cannot be a
// link: the language part is missing, too long, not lower-case letters or
// unknown, or the title (without section) still starts with a language
// prefix.
func WikipediaClearlyBroken(value string, langs Languages) bool {
	link, ok := wiki.ParseLink(value)
	if !ok {
		return true
	}
	if len(link.Lang) > 3 || !lowerAlpha.MatchString(link.Lang) || !langs.IsLanguage(link.Lang) {
		return true
	}
	return link.Title == "" || rawPrefix.MatchString(link.Title)
}

// SemicolonListValid reports whether value is one or more item ids joined by
// ";" with at most one trailing ";" and no whitespace.
func SemicolonListValid(value string) bool {
	return semicolonListPattern.MatchString(value)
}

// MalformedWikidata reports a wikidata tag that is not an item id. Values
// that only need trimming, upper-casing or URL stripping get a fix.
func MalformedWikidata(tags feature.Tags) *report.Report {
	value, ok := tags[KeyWikidata]
	if !ok || !WikidataClearlyBroken(value) {
		return nil
	}
	r := &report.Report{
		ErrorID:      IDMalformedWikidata,
		Message:      fmt.Sprintf("wikidata=%q is not a Wikidata item id (expected something like Q42)", value),
		Prerequisite: transaction.Values{KeyWikidata: transaction.Str(value)},
	}
	if m := wikidataFixable.FindStringSubmatch(value); m != nil {
		fixed := strings.ToUpper(m[1])
		r.DesiredLinkTarget = fixed
		r.ProposedChanges = []transaction.Transaction{{
			From: transaction.Values{KeyWikidata: transaction.Str(value)},
			To:   transaction.Values{KeyWikidata: transaction.Str(fixed)},
		}}
	}
	return r
}

// MalformedWikipedia reports a wikipedia tag that cannot be a link. URL
// forms and doubled language prefixes get a fix.
func MalformedWikipedia(tags feature.Tags, langs Languages) *report.Report {
	value, ok := tags[KeyWikipedia]
	if !ok || !WikipediaClearlyBroken(value, langs) {
		return nil
	}
	r := &report.Report{
		ErrorID:      IDMalformedWikipedia,
		Message:      fmt.Sprintf("wikipedia=%q is not in the language:Article title form", value),
		Prerequisite: transaction.Values{KeyWikipedia: transaction.Str(value)},
	}
	if fixed, ok := fixWikipedia(value); ok && !WikipediaClearlyBroken(fixed, langs) {
		r.DesiredLinkTarget = fixed
		r.ProposedChanges = []transaction.Transaction{{
			From: transaction.Values{KeyWikipedia: transaction.Str(value)},
			To:   transaction.Values{KeyWikipedia: transaction.Str(fixed)},
		}}
	}
	return r
}

func fixWikipedia(value string) (string, bool) {
	if m := wikipediaURL.FindStringSubmatch(value); m != nil {
		title, err := url.PathUnescape(m[2])
		if err != nil {
			return "", false
		}
		return m[1] + ":" + strings.ReplaceAll(title, "_", " "), true
	}
	if m := doublePrefix.FindStringSubmatch(value); m != nil && m[1] == m[2] {
		return m[1] + ":" + m[3], true
	}
	return "", false
}

// SecondaryWikidataKeys returns the "<prefix>:wikidata" keys in sorted order.
func SecondaryWikidataKeys(tags feature.Tags) []string {
	return tags.WithSuffix(":" + KeyWikidata)
}

// MalformedSecondaryWikidata reports a key:wikidata value that is not a
// semicolon separated list of item ids.
func MalformedSecondaryWikidata(key, value string) *report.Report {
	if SemicolonListValid(value) {
		return nil
	}
	return &report.Report{
		ErrorID:      MalformedSecondaryID(key),
		Message:      fmt.Sprintf("%s=%q is not a list of Wikidata item ids", key, value),
		Prerequisite: transaction.Values{key: transaction.Str(value)},
	}
}

// LegacyKeys returns the "wikipedia:<lang>" keys in sorted order.
func LegacyKeys(tags feature.Tags) []string {
	return tags.WithPrefix(KeyWikipedia + ":")
}

// legacyLink turns wikipedia:<lang>=<title> into a link. A value that
// repeats the language prefix is accepted.
func legacyLink(key, value string) wiki.Link {
	lang := strings.TrimPrefix(key, KeyWikipedia+":")
	title := strings.TrimPrefix(value, lang+":")
	title, section, _ := strings.Cut(title, "#")
	return wiki.Link{Lang: lang, Title: strings.TrimSpace(title), Section: section}
}

// UnknownLegacyLanguage reports a wikipedia:<lang> key whose suffix is not a
// known language code.
func UnknownLegacyLanguage(tags feature.Tags, langs Languages) *report.Report {
	for _, key := range LegacyKeys(tags) {
		lang := strings.TrimPrefix(key, KeyWikipedia+":")
		if langs.IsLanguage(lang) {
			continue
		}
		return &report.Report{
			ErrorID:      IDMalformedLegacy,
			Message:      fmt.Sprintf("%s uses %q, which is not a Wikipedia language code", key, lang),
			Prerequisite: transaction.Values{key: transaction.Str(tags[key])},
			Extra:        report.Language(lang),
		}
	}
	return nil
}
