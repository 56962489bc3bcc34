package report

import (
	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/feature"
)

// Outcome is what happened to one feature when a document was applied.
type Outcome struct {
	FeatureURL string `json:"feature_url" yaml:"feature_url"`
	ErrorID    string `json:"error_id" yaml:"error_id"`
	Applied    bool   `json:"applied" yaml:"applied"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Apply applies the first proposed transaction of each record to the
// matching element. Elements whose tags no longer satisfy the record's
// prerequisite or the transaction are left untouched. Records without a
// proposal and records matching no element are reported as skipped.
func (d *Document) Apply(elements []*feature.Element) []Outcome {
	byURL := make(map[string]*feature.Element, len(elements))
	for _, e := range elements {
		byURL[feature.URL(e.Link())] = e
	}

	var outcomes []Outcome
	seen := make(map[string]bool, len(d.Reports))
	for _, rec := range d.Reports {
		if seen[rec.FeatureURL] {
			continue
		}
		seen[rec.FeatureURL] = true

		out := Outcome{FeatureURL: rec.FeatureURL, ErrorID: rec.ErrorID}
		e, ok := byURL[rec.FeatureURL]
		switch {
		case !ok:
			out.Reason = "feature not in input"
		case len(rec.ProposedChanges) == 0:
			out.Reason = "no proposed change"
		case !rec.Prerequisite.Holds(e.TagSet):
			out.Reason = "tags changed since the report was produced"
		default:
			updated, err := rec.ProposedChanges[0].Applied(e.TagSet)
			if err != nil {
				out.Reason = describeFailure(err)
				break
			}
			e.TagSet = updated
			out.Applied = true
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func describeFailure(err error) string {
	if errors.IsPrerequisiteFailed(err) {
		return "transaction no longer applies: " + err.Error()
	}
	return err.Error()
}
