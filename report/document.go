package report

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/teranos/wdlint/errors"
)

// Document is one run's worth of reports.
type Document struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	Reports     []Record  `json:"reports" yaml:"reports"`
}

// NewDocument wraps reports under a fresh run id.
func NewDocument(source string, reports []*Report) *Document {
	doc := &Document{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Source:      source,
		Reports:     make([]Record, 0, len(reports)),
	}
	for _, r := range reports {
		if r != nil {
			doc.Reports = append(doc.Reports, r.Record())
		}
	}
	return doc
}

// WriteYAML encodes the document as YAML.
func (d *Document) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(err, "encode yaml report")
	}
	return errors.Wrap(enc.Close(), "flush yaml report")
}

// WriteJSON encodes the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(d), "encode json report")
}

// ReadDocument decodes a YAML or JSON document, sniffing the first byte.
func ReadDocument(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	var doc Document
	if isJSON(br) {
		if err := json.NewDecoder(br).Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode json report document")
		}
	} else if err := yaml.NewDecoder(br).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode yaml report document")
	}
	if _, err := uuid.Parse(doc.RunID); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "report document has invalid run_id %q", doc.RunID)
	}
	return &doc, nil
}

func isJSON(br *bufio.Reader) bool {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return false
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			br.ReadByte()
		case '{':
			return true
		default:
			return false
		}
	}
}

// ByFeature indexes records by feature URL. A feature has at most one report
// per run, so later duplicates are dropped.
func (d *Document) ByFeature() map[string]Record {
	out := make(map[string]Record, len(d.Reports))
	for _, rec := range d.Reports {
		if _, seen := out[rec.FeatureURL]; !seen {
			out[rec.FeatureURL] = rec
		}
	}
	return out
}
