// Package report defines the structured verdict of a check and the
// documents reports are exchanged in.
package report

import (
	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/transaction"
)

// ExtraKind tags the payload carried in Report.Extra.
type ExtraKind int

const (
	ExtraNone ExtraKind = iota
	// ExtraPrefix carries a suggested tag-key prefix such as "brand:".
	ExtraPrefix
	// ExtraLanguage carries the language code a link was expected in.
	ExtraLanguage
	// ExtraConflict carries a human-readable list of disagreeing links.
	ExtraConflict
)

// Extra is the per-kind supplementary payload of a report.
type Extra struct {
	Kind  ExtraKind
	Value string
}

// Prefix builds an ExtraPrefix payload.
func Prefix(p string) Extra { return Extra{Kind: ExtraPrefix, Value: p} }

// Language builds an ExtraLanguage payload.
func Language(lang string) Extra { return Extra{Kind: ExtraLanguage, Value: lang} }

// Conflict builds an ExtraConflict payload.
func Conflict(desc string) Extra { return Extra{Kind: ExtraConflict, Value: desc} }

// Report is one detected problem. Validators fill the first six fields;
// Bind adds what is known about the feature.
type Report struct {
	ErrorID           string
	Message           string
	Prerequisite      transaction.Values
	DesiredLinkTarget string
	ProposedChanges   []transaction.Transaction
	Extra             Extra

	Location    *feature.Location
	FeatureURL  string
	CurrentLink string
}

// HasFix reports whether the report proposes at least one transaction.
func (r *Report) HasFix() bool {
	return r != nil && len(r.ProposedChanges) > 0
}

// Bind returns a copy of r enriched with the feature's location, URL and
// current link (the wikipedia tag, or the wikidata tag when there is none).
func (r *Report) Bind(f feature.Feature) *Report {
	if r == nil {
		return nil
	}
	out := *r
	if loc, ok := f.Location(); ok {
		out.Location = &loc
	}
	out.FeatureURL = feature.URL(f.Link())
	tags := f.Tags()
	out.CurrentLink = tags.Get("wikipedia")
	if out.CurrentLink == "" {
		out.CurrentLink = tags.Get("wikidata")
	}
	return &out
}

// Record is the flat, serialisable form of a Report.
type Record struct {
	ErrorID           string                    `json:"error_id" yaml:"error_id"`
	ErrorMessage      string                    `json:"error_message" yaml:"error_message"`
	Prerequisite      transaction.Values        `json:"prerequisite" yaml:"prerequisite"`
	DesiredLinkTarget *string                   `json:"desired_link_target" yaml:"desired_link_target"`
	ProposedChanges   []transaction.Transaction `json:"proposed_tagging_changes" yaml:"proposed_tagging_changes"`
	ExtraData         *string                   `json:"extra_data" yaml:"extra_data"`
	Location          *feature.Location         `json:"location" yaml:"location"`
	FeatureURL        string                    `json:"feature_url" yaml:"feature_url"`
	CurrentLink       string                    `json:"current_link" yaml:"current_link"`
}

// Record flattens the report.
func (r *Report) Record() Record {
	rec := Record{
		ErrorID:         r.ErrorID,
		ErrorMessage:    r.Message,
		Prerequisite:    r.Prerequisite,
		ProposedChanges: r.ProposedChanges,
		Location:        r.Location,
		FeatureURL:      r.FeatureURL,
		CurrentLink:     r.CurrentLink,
	}
	if rec.Prerequisite == nil {
		rec.Prerequisite = transaction.Values{}
	}
	if rec.ProposedChanges == nil {
		rec.ProposedChanges = []transaction.Transaction{}
	}
	if r.DesiredLinkTarget != "" {
		rec.DesiredLinkTarget = transaction.Str(r.DesiredLinkTarget)
	}
	if r.Extra.Kind != ExtraNone {
		rec.ExtraData = transaction.Str(r.Extra.Value)
	}
	return rec
}

// Flat renders the report as the mapping downstream tooling consumes.
// Absent optional values are nil.
func (r *Report) Flat() map[string]interface{} {
	rec := r.Record()
	flat := map[string]interface{}{
		"error_id":                 rec.ErrorID,
		"error_message":            rec.ErrorMessage,
		"prerequisite":             rec.Prerequisite,
		"desired_link_target":      nil,
		"proposed_tagging_changes": rec.ProposedChanges,
		"extra_data":               nil,
		"location":                 nil,
		"feature_url":              rec.FeatureURL,
		"current_link":             rec.CurrentLink,
	}
	if rec.DesiredLinkTarget != nil {
		flat["desired_link_target"] = *rec.DesiredLinkTarget
	}
	if rec.ExtraData != nil {
		flat["extra_data"] = *rec.ExtraData
	}
	if rec.Location != nil {
		flat["location"] = *rec.Location
	}
	return flat
}
