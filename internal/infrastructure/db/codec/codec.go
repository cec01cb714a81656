// Package codec encodes record sequences the way every storage backend
// persists them: an indented JSON array, HTML characters and non-ASCII text
// left as-is.
package codec

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Encode renders records as an indented JSON array. A nil slice encodes as [].
func Encode[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return rawLineSeparators(buf.Bytes()), nil
}

var (
	lineSep = []byte(`\u2028`)
	paraSep = []byte(`\u2029`)
)

// rawLineSeparators turns the \u2028 and \u2029 escapes the encoder always
// emits back into the characters themselves. Escape pairs are walked as a
// unit so an escaped backslash followed by "u2028" is left alone.
func rawLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, lineSep) && !bytes.Contains(b, paraSep) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 == len(b) {
			out = append(out, b[i])
			continue
		}
		switch rest := b[i:]; {
		case bytes.HasPrefix(rest, lineSep):
			out = append(out, "\u2028"...)
			i += len(lineSep) - 1
		case bytes.HasPrefix(rest, paraSep):
			out = append(out, "\u2029"...)
			i += len(paraSep) - 1
		default:
			out = append(out, b[i], b[i+1])
			i++
		}
	}
	return out
}

// Decode parses a JSON array of records. A JSON null decodes as an empty slice.
func Decode[T any](data []byte) ([]T, error) {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}
