// Package feature is the read-only view of a map feature that the checks
// consume: its tags, an optional position, and a stable element link.
package feature

import (
	"sort"
	"strings"
)

// Feature is anything wdlint can check.
type Feature interface {
	Tags() Tags
	Location() (Location, bool)
	Link() string
}

// Location is a WGS84 position.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Tags is a feature's key/value tag mapping.
type Tags map[string]string

// Get returns the value for key, or "" when absent.
func (t Tags) Get(key string) string {
	return t[key]
}

// Has reports whether key is present.
func (t Tags) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Keys returns every key in sorted order.
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithPrefix returns the sorted keys starting with prefix.
func (t Tags) WithPrefix(prefix string) []string {
	var keys []string
	for _, k := range t.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// WithSuffix returns the sorted keys ending with suffix, excluding suffix itself.
func (t Tags) WithSuffix(suffix string) []string {
	var keys []string
	for _, k := range t.Keys() {
		if k != suffix && strings.HasSuffix(k, suffix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Clone returns an independent copy.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Element is the concrete Feature loaded from files or built from CLI flags.
type Element struct {
	ID     string // "node/123", "way/7", or any caller-chosen identifier
	TagSet Tags
	Pos    *Location
}

// Tags implements Feature.
func (e *Element) Tags() Tags {
	return e.TagSet
}

// Location implements Feature.
func (e *Element) Location() (Location, bool) {
	if e.Pos == nil {
		return Location{}, false
	}
	return *e.Pos, true
}

// Link implements Feature.
func (e *Element) Link() string {
	return e.ID
}

var osmTypes = map[string]bool{"node": true, "way": true, "relation": true}

// URL turns an element link into a browsable address. OSM style
// "type/id" links point at openstreetmap.org; anything else is returned as is.
func URL(link string) string {
	typ, id, ok := strings.Cut(link, "/")
	if !ok || !osmTypes[typ] || id == "" {
		return link
	}
	return "https://www.openstreetmap.org/" + typ + "/" + id
}
