// Package validate holds the independent link checks. Each check looks at one
// condition and returns a report or nil.
//
// The syntactic checks never touch the network. The Validator checks go
// through a wiki.Resolver and treat every resolver failure as "no evidence
// of a problem".
package validate

// Report ids produced by this package.
const (
	IDMalformedWikidata         = "malformed wikidata tag"
	IDMalformedWikipedia        = "malformed wikipedia tag"
	IDMalformedLegacy           = "malformed outdated wikipedia tag"
	IDLegacyForm                = "wikipedia tag in outdated form"
	IDLegacyDuplicated          = "duplicated wikipedia tag in outdated form"
	IDLegacyMismatch            = "wikipedia tag in outdated form and there is mismatch between links"
	IDLegacy404                 = "wikipedia tag in outdated form links to 404"
	IDWikidata404               = "wikidata tag links to 404"
	IDWikipedia404              = "wikipedia tag links to 404"
	IDMismatch                  = "wikipedia wikidata mismatch"
	IDMismatchWikidataRedirect  = "wikipedia wikidata mismatch - follow wikidata redirect"
	IDMismatchWikipediaRedirect = "wikipedia wikidata mismatch - follow wikipedia redirect"
)

// MalformedSecondaryID is the report id for a broken key:wikidata value.
func MalformedSecondaryID(key string) string {
	return "malformed secondary wikidata tag - for " + key + " tag"
}

// Tag keys.
const (
	KeyWikidata  = "wikidata"
	KeyWikipedia = "wikipedia"
)
