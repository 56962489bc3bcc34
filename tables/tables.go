// Package tables holds the static reference data the checks consult:
// Wikipedia language codes, the global language importance order, the
// brand/operator blacklist, and the country to language table.
//
// Tables are plain values injected into the checker, so tests can swap in
// their own data without touching control flow.
package tables

import (
	"regexp"
	"sort"

	"github.com/teranos/wdlint/errors"
)

// BlacklistEntry is a Wikidata item that is a known bad primary link.
// Features matching ExpectedTags should link it through Prefix+"wikidata".
type BlacklistEntry struct {
	ID           string            `toml:"id"`
	Name         string            `toml:"name"`
	Prefix       string            `toml:"prefix"`
	ExpectedTags map[string]string `toml:"expected_tags"`
}

// Matches reports whether every expected tag is present with its value.
func (b BlacklistEntry) Matches(tags map[string]string) bool {
	for k, v := range b.ExpectedTags {
		if tags[k] != v {
			return false
		}
	}
	return true
}

// Tables is the full reference data set.
type Tables struct {
	Languages        map[string]bool
	Importance       []string
	Blacklist        map[string]BlacklistEntry
	CountryLanguages map[string]string // lower-case ISO 3166-1 alpha-2 -> language code
}

// IsLanguage reports whether code is a known Wikipedia language code.
func (t *Tables) IsLanguage(code string) bool {
	return t.Languages[code]
}

// Blacklisted returns the blacklist entry for id.
func (t *Tables) Blacklisted(id string) (BlacklistEntry, bool) {
	e, ok := t.Blacklist[id]
	return e, ok
}

// ExpectedLanguage returns the language expected for links of features in
// country, or "".
func (t *Tables) ExpectedLanguage(country string) string {
	return t.CountryLanguages[country]
}

// Preference returns the caller's languages followed by the importance
// order, without duplicates.
func (t *Tables) Preference(callerLanguages []string) []string {
	seen := make(map[string]bool, len(callerLanguages)+len(t.Importance))
	out := make([]string, 0, len(callerLanguages)+len(t.Importance))
	for _, list := range [][]string{callerLanguages, t.Importance} {
		for _, l := range list {
			if l != "" && !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

var (
	entityIDPattern = regexp.MustCompile(`^Q[0-9]+$`)
	prefixPattern   = regexp.MustCompile(`^[a-z_]+:$`)
)

// Validate checks the properties the checks rely on and reports every
// violation at once.
func (t *Tables) Validate() error {
	var errs []error
	ids := make([]string, 0, len(t.Blacklist))
	for id := range t.Blacklist {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		e := t.Blacklist[id]
		if !entityIDPattern.MatchString(id) {
			errs = append(errs, errors.Newf("blacklist key %q is not a Wikidata item id", id))
		}
		if e.ID != "" && e.ID != id {
			errs = append(errs, errors.Newf("blacklist entry %s declares id %q", id, e.ID))
		}
		if !prefixPattern.MatchString(e.Prefix) {
			errs = append(errs, errors.Newf("blacklist entry %s has invalid prefix %q", id, e.Prefix))
		}
		if len(e.ExpectedTags) == 0 {
			errs = append(errs, errors.Newf("blacklist entry %s declares no expected tags", id))
		}
	}
	for _, l := range t.Importance {
		if !t.Languages[l] {
			errs = append(errs, errors.Newf("importance order lists unknown language %q", l))
		}
	}
	for country, l := range t.CountryLanguages {
		if !t.Languages[l] {
			errs = append(errs, errors.Newf("country %s maps to unknown language %q", country, l))
		}
	}
	return errors.Join(errs...)
}
