package structured

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is a validated instance of a Descriptor. Every declared field has
// a value: decoded input, the declared default, or Absent.
type Record struct {
	desc   *Descriptor
	values map[string]any
}

// Descriptor returns the descriptor the record was validated against.
func (r *Record) Descriptor() *Descriptor { return r.desc }

// Get returns the normalized value of a declared field.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// IsAbsent reports whether an optional field was left without value.
func (r *Record) IsAbsent(name string) bool {
	v, ok := r.values[name]
	return ok && IsAbsent(v)
}

func (r *Record) String(name string) (string, bool) {
	s, ok := r.values[name].(string)
	return s, ok
}

func (r *Record) Int(name string) (int64, bool) {
	n, ok := r.values[name].(int64)
	return n, ok
}

func (r *Record) Bool(name string) (bool, bool) {
	b, ok := r.values[name].(bool)
	return b, ok
}

// Strings returns a sequence-of-string field.
func (r *Record) Strings(name string) ([]string, bool) {
	items, ok := r.values[name].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// Map returns a copy of the values keyed by field name. Absent fields map to
// the Absent marker.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = cloneValue(v)
	}
	return out
}

// MarshalJSON writes the fields in declaration order. Absent fields are
// written as null.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.desc.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[f.Name])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Into copies the record into v, which must be a pointer to a struct or map
// with JSON tags matching the field names. Absent fields leave pointer
// fields nil. A value the target cannot hold is reported as a
// ConstraintViolation on that field.
func (r *Record) Into(v any) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return &Error{Kind: KindConstraintViolation, Detail: err.Error(), Cause: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		cerr := &Error{
			Kind:   KindConstraintViolation,
			Detail: fmt.Sprintf("record %s does not fit %T: %v", r.desc.name, v, err),
			Cause:  err,
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			cerr.Field = typeErr.Field
		}
		return cerr
	}
	return nil
}
