package structured

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Validate checks candidate against the descriptor and returns the
// normalized record. Fields are checked in declaration order and the first
// failure is returned. Keys the descriptor does not declare are ignored.
//
// Absent optional fields take their default, or Absent when none is declared.
// An explicit null on an optional field counts as absent.
func (d *Descriptor) Validate(candidate any) (*Record, error) {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return nil, &Error{
			Kind:   KindUnexpectedShape,
			Detail: fmt.Sprintf("expected a JSON object, got %s", jsonKind(candidate)),
		}
	}

	values := make(map[string]any, len(d.fields))
	for _, f := range d.fields {
		raw, present := obj[f.Name]
		if present && raw == nil && f.Optional {
			present = false
		}
		if !present {
			switch {
			case f.HasDefault:
				values[f.Name] = cloneValue(f.Default)
			case f.Optional:
				values[f.Name] = Absent
			default:
				return nil, missingField(f.Name)
			}
			continue
		}

		v, err := validateValue(f, raw, f.Name)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}
	return &Record{desc: d, values: values}, nil
}

// validateValue checks one present value and returns its normalized form:
// string, int64, bool or []any of normalized elements.
func validateValue(f *Field, raw any, path string) (any, *Error) {
	if raw == nil {
		return nil, constraintViolation(path, "expected %s, got null", f.Type)
	}

	switch f.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, constraintViolation(path, "expected string, got %s", jsonKind(raw))
		}
		return s, nil

	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, constraintViolation(path, "expected boolean, got %s", jsonKind(raw))
		}
		return b, nil

	case TypeInteger:
		n, err := toInt64(raw)
		if err != nil {
			return nil, constraintViolation(path, "expected integer, %v", err)
		}
		if f.Minimum != nil && float64(n) < *f.Minimum {
			return nil, constraintViolation(path, "value %d is below minimum %v", n, *f.Minimum)
		}
		if f.Maximum != nil && float64(n) > *f.Maximum {
			return nil, constraintViolation(path, "value %d is above maximum %v", n, *f.Maximum)
		}
		return n, nil

	case TypeSequence:
		items, ok := raw.([]any)
		if !ok {
			return nil, constraintViolation(path, "expected array, got %s", jsonKind(raw))
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := validateValue(f.Items, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, constraintViolation(path, "unsupported type %q", f.Type)
}

// toInt64 accepts integral JSON numbers, including forms like 4.0.
func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, fmt.Errorf("got %q", string(n))
		}
		return floatToInt64(f)
	case float64:
		return floatToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("got %s", jsonKind(raw))
	}
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("got non-integral number %v", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("number %v overflows int64", f)
	}
	return int64(f), nil
}

func cloneValue(v any) any {
	if items, ok := v.([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}
