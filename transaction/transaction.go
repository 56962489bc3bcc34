// Package transaction models proposed tag edits and applies them safely.
//
// A Transaction names the values it expects to find (From) and the values it
// wants to leave behind (To). A nil value means "absent" in From and
// "leave unset" in To. Apply either performs the whole edit or nothing.
package transaction

import (
	"sort"

	"github.com/teranos/wdlint/errors"
)

// Values maps tag keys to a value or nil for "absent".
type Values map[string]*string

// Transaction is one proposed tag edit.
type Transaction struct {
	From Values `json:"from" yaml:"from"`
	To   Values `json:"to" yaml:"to"`
}

// Str returns a pointer to s, for building Values literals.
func Str(s string) *string {
	return &s
}

// New builds a transaction from two plain maps, treating "" as nil.
func New(from, to map[string]string) Transaction {
	return Transaction{From: fromPlain(from), To: fromPlain(to)}
}

func fromPlain(m map[string]string) Values {
	out := make(Values, len(m))
	for k, v := range m {
		if v == "" {
			out[k] = nil
			continue
		}
		out[k] = Str(v)
	}
	return out
}

// Holds reports whether every key in p currently has its stated value.
func (p Values) Holds(tags map[string]string) bool {
	return p.firstViolation(tags) == ""
}

// firstViolation returns the first key (in sorted order) whose current value
// differs from the expected one, or "".
func (p Values) firstViolation(tags map[string]string) string {
	for _, k := range p.Keys() {
		want := p[k]
		got, present := tags[k]
		switch {
		case want == nil && present:
			return k
		case want != nil && (!present || got != *want):
			return k
		}
	}
	return ""
}

// Keys returns the keys in sorted order.
func (p Values) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Check validates the transaction against tags without changing them.
// Every From key must hold its expected value. Every To key must be absent
// unless the same key is listed in From, which makes it a replacement.
func (t Transaction) Check(tags map[string]string) error {
	if k := t.From.firstViolation(tags); k != "" {
		return errors.NewPrerequisiteError("tag %q is %s, expected %s", k, describe(tags, k), expected(t.From[k]))
	}
	for _, k := range t.To.Keys() {
		if _, replaced := t.From[k]; replaced {
			continue
		}
		if v, present := tags[k]; present {
			return errors.NewPrerequisiteError("tag %q is already set to %q", k, v)
		}
	}
	return nil
}

// Apply checks the transaction and then edits tags in place: From keys are
// deleted, non-nil To keys are set. On error tags are left untouched.
func (t Transaction) Apply(tags map[string]string) error {
	if err := t.Check(tags); err != nil {
		return err
	}
	for k := range t.From {
		delete(tags, k)
	}
	for k, v := range t.To {
		if v != nil {
			tags[k] = *v
		}
	}
	return nil
}

// Applied returns an edited copy of tags, leaving the original unchanged.
func (t Transaction) Applied(tags map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(tags)+len(t.To))
	for k, v := range tags {
		out[k] = v
	}
	if err := t.Apply(out); err != nil {
		return nil, err
	}
	return out, nil
}

func describe(tags map[string]string, k string) string {
	if v, ok := tags[k]; ok {
		return `"` + v + `"`
	}
	return "absent"
}

func expected(v *string) string {
	if v == nil {
		return "absent"
	}
	return `"` + *v + `"`
}
