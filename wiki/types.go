// Package wiki resolves Wikidata entities and Wikipedia articles.
//
// The core of wdlint only depends on the Resolver interface. Client talks to
// the live APIs, Cache memoizes any Source in memory and on disk, and
// NewResolver derives the full Resolver surface from a Source.
package wiki

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Wikidata properties consulted by wdlint.
const (
	PropInstanceOf        = "P31"
	PropSubclassOf        = "P279"
	PropDiscovererOrInv   = "P61"
	PropCOSPARID          = "P247"
	PropDissolved         = "P576"
	PropHasCharacteristic = "P1552"
	PropCoordinates       = "P625"
)

var entityIDPattern = regexp.MustCompile(`^Q[0-9]+$`)

// IsEntityID reports whether s is a well-formed Wikidata item id.
func IsEntityID(s string) bool {
	return entityIDPattern.MatchString(s)
}

// Entity is the subset of a Wikidata item wdlint reasons about.
// ID is the id the knowledge base answered with; it differs from the
// requested id when the requested item is a redirect.
type Entity struct {
	ID        string              `json:"id"`
	Labels    map[string]string   `json:"labels,omitempty"`
	Claims    map[string][]string `json:"claims,omitempty"`
	Sitelinks map[string]string   `json:"sitelinks,omitempty"` // language code -> article title
}

// Values returns the claim values recorded for property.
func (e *Entity) Values(property string) []string {
	if e == nil {
		return nil
	}
	return e.Claims[property]
}

// Has reports whether the entity carries at least one claim for property.
func (e *Entity) Has(property string) bool {
	return len(e.Values(property)) > 0
}

// Sitelink returns the Wikipedia title linked for lang, or "".
func (e *Entity) Sitelink(lang string) string {
	if e == nil {
		return ""
	}
	return e.Sitelinks[lang]
}

// Label returns the label in lang, falling back to English and then the id.
func (e *Entity) Label(lang string) string {
	if e == nil {
		return ""
	}
	if l, ok := e.Labels[lang]; ok {
		return l
	}
	if l, ok := e.Labels["en"]; ok {
		return l
	}
	return e.ID
}

// Article is a Wikipedia page after redirect resolution.
type Article struct {
	Lang           string `json:"lang"`
	Title          string `json:"title"`                     // canonical title of the final page
	RedirectedFrom string `json:"redirected_from,omitempty"` // requested title when it was a redirect
	EntityID       string `json:"entity_id,omitempty"`       // Wikidata item of the final page
}

// IsRedirect reports whether the requested title pointed through a redirect.
func (a *Article) IsRedirect() bool {
	return a != nil && a.RedirectedFrom != ""
}

// Link is a parsed "lang:Title#Section" wikipedia tag value.
type Link struct {
	Lang    string
	Title   string
	Section string
}

// ParseLink splits a wikipedia tag value at its first colon.
// ok is false when the value has no language part at all.
func ParseLink(value string) (link Link, ok bool) {
	lang, rest, found := strings.Cut(value, ":")
	if !found {
		return Link{Title: value}, false
	}
	title, section, _ := strings.Cut(rest, "#")
	return Link{Lang: lang, Title: strings.TrimSpace(title), Section: section}, lang != ""
}

// String renders the link without its section.
func (l Link) String() string {
	return l.Lang + ":" + l.Title
}

// WithoutSection drops the "#Section" fragment.
func (l Link) WithoutSection() Link {
	l.Section = ""
	return l
}

// Equal compares two links by language and normalized title.
func (l Link) Equal(other Link) bool {
	return l.Lang == other.Lang && NormalizeTitle(l.Title) == NormalizeTitle(other.Title)
}

// NormalizeTitle brings a title to the form MediaWiki stores it in:
// underscores as spaces, NFC, first letter upper-cased.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
	t = norm.NFC.String(t)
	r, size := utf8.DecodeRuneInString(t)
	if r == utf8.RuneError {
		return t
	}
	return string(unicode.ToUpper(r)) + t[size:]
}
