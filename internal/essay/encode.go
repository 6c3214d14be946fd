package essay

import (
	"bytes"
	"encoding/json"
	"io"
)

// Indent is the indentation used for printed records.
const Indent = "    "

// Encode writes v as indented JSON followed by a newline. Non-ASCII and
// HTML characters are written literally.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	return enc.Encode(v)
}

// marshalLiteral is json.Marshal without HTML escaping.
func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
