package structured

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind discriminates pipeline failures.
type ErrorKind string

const (
	KindTransport           ErrorKind = "transport_error"
	KindEmptyResponse       ErrorKind = "empty_response"
	KindMalformedJSON       ErrorKind = "malformed_json"
	KindUnexpectedShape     ErrorKind = "unexpected_shape"
	KindMissingField        ErrorKind = "missing_field"
	KindConstraintViolation ErrorKind = "constraint_violation"
)

// Error is the classified failure returned by every stage of the pipeline.
//
// Field is set for MissingField and ConstraintViolation and uses a dotted
// path with [i] for sequence elements. Position, Line and Column are set for
// MalformedJSON and point at the earliest offending byte (Position is a
// zero-based byte offset, Line and Column are one-based).
type Error struct {
	Kind     ErrorKind `json:"kind"`
	Field    string    `json:"field,omitempty"`
	Position int64     `json:"position,omitempty"`
	Line     int       `json:"line,omitempty"`
	Column   int       `json:"column,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	Cause    error     `json:"-"`
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	switch {
	case e.Field != "":
		fmt.Fprintf(&sb, " %s", e.Field)
	case e.Kind == KindMalformedJSON:
		fmt.Fprintf(&sb, " at %d (line %d, column %d)", e.Position, e.Line, e.Column)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil && e.Detail == "" {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by kind so callers can write
// errors.Is(err, &structured.Error{Kind: structured.KindEmptyResponse}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// KindOf returns the kind of a classified error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AsError extracts the classified error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func missingField(path string) *Error {
	return &Error{Kind: KindMissingField, Field: path, Detail: "required field is missing"}
}

func constraintViolation(path, format string, args ...any) *Error {
	return &Error{Kind: KindConstraintViolation, Field: path, Detail: fmt.Sprintf(format, args...)}
}

func malformedJSON(text string, offset int64, cause error) *Error {
	line, col := lineColumn(text, offset)
	return &Error{
		Kind:     KindMalformedJSON,
		Position: offset,
		Line:     line,
		Column:   col,
		Detail:   cause.Error(),
		Cause:    cause,
	}
}

// lineColumn converts a byte offset into one-based line and column numbers.
func lineColumn(text string, offset int64) (int, int) {
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	line, col := 1, 1
	for i := int64(0); i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
