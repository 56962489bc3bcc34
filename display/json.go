package display

import (
	"encoding/json"
	"flag"
	"io"

	"github.com/teranos/wdlint/errors"
)

// MarshalJSON marshals JSON with pretty formatting for terminals and tests,
// compact formatting when compact is requested.
func MarshalJSON(v interface{}, compact bool) ([]byte, error) {
	// Tests always get stable, indented output
	if compact && flag.Lookup("test.v") == nil {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// OutputJSON marshals v and writes it to w followed by a newline
func OutputJSON(w io.Writer, v interface{}, compact bool) error {
	data, err := MarshalJSON(v, compact)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
