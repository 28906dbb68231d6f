package structured

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Decode parses candidate as a single JSON object and validates it against
// desc. It never returns a partial record: on failure the record is nil and
// the error is a *Error.
//
// Text around the JSON value is not stripped. Install a PreFilter on the
// pipeline when a provider wraps its output in commentary.
func Decode(candidate string, desc *Descriptor) (*Record, error) {
	if strings.TrimSpace(candidate) == "" {
		return nil, &Error{Kind: KindEmptyResponse, Detail: "no content to decode"}
	}

	value, cerr := decodeValue([]byte(candidate))
	if cerr != nil {
		return nil, cerr
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &Error{
			Kind:   KindUnexpectedShape,
			Detail: fmt.Sprintf("expected a JSON object, got %s", jsonKind(value)),
		}
	}
	return desc.Validate(obj)
}

// DecodeInto decodes candidate and copies the validated record into a new T.
func DecodeInto[T any](candidate string, desc *Descriptor) (*T, error) {
	rec, err := Decode(candidate, desc)
	if err != nil {
		return nil, err
	}
	var out T
	if err := rec.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeValue parses exactly one JSON value. Numbers stay json.Number so
// integers beyond float64 precision survive validation. Invalid UTF-8 is
// rejected instead of being replaced with U+FFFD; when the text also has a
// syntax error, whichever comes first is reported.
func decodeValue(data []byte) (any, *Error) {
	bad := invalidUTF8(data)

	v, cerr := parseOne(data)
	if bad >= 0 && (cerr == nil || cerr.Position > int64(bad)) {
		return nil, malformedJSON(string(data), int64(bad),
			fmt.Errorf("invalid UTF-8 byte 0x%02x", data[bad]))
	}
	return v, cerr
}

func parseOne(data []byte) (any, *Error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, classifySyntax(string(data), err)
	}

	rest := data[dec.InputOffset():]
	if i := bytes.IndexFunc(rest, func(r rune) bool { return !unicode.IsSpace(r) }); i >= 0 {
		pos := dec.InputOffset() + int64(i)
		return nil, malformedJSON(string(data), pos,
			fmt.Errorf("invalid character %q after top-level value", data[pos]))
	}
	return v, nil
}

// invalidUTF8 returns the offset of the first byte that does not start a
// valid UTF-8 sequence, or -1.
func invalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

func classifySyntax(text string, err error) *Error {
	var syn *json.SyntaxError
	switch {
	case errors.As(err, &syn):
		// Offset counts the offending byte itself.
		pos := syn.Offset - 1
		if pos < 0 {
			pos = 0
		}
		return malformedJSON(text, pos, err)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return malformedJSON(text, int64(len(text)), io.ErrUnexpectedEOF)
	default:
		return malformedJSON(text, 0, err)
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
