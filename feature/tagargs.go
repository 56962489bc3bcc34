package feature

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/wdlint/errors"
)

// ParseTagArgs parses shell-style "key=value" words into Tags:
//
//	wikidata=Q42 'name=Douglas Adams' "wikipedia=en:Douglas Adams"
func ParseTagArgs(input string) (Tags, error) {
	words, err := shellquote.Split(input)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "parse tags: %v", err)
	}
	return ParseTagWords(words)
}

// ParseTagWords parses already split "key=value" words.
func ParseTagWords(words []string) (Tags, error) {
	tags := make(Tags, len(words))
	for _, w := range words {
		k, v, ok := strings.Cut(w, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.NewInvalidRequestError("tag %q is not key=value", w)
		}
		tags[strings.TrimSpace(k)] = v
	}
	return tags, nil
}
