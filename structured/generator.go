package structured

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// DescriptorFor derives a descriptor from the exported fields of struct T.
//
// Field names come from the json tag. Pointer fields are optional. The
// jsonschema tag takes comma-separated options:
//
//   - optional: mark a non-pointer field optional
//   - minimum=1, maximum=5: inclusive integer range, narrowed to what the
//     Go type can hold (an int8 field never accepts 200)
//   - default=...: value used when the field is absent
//   - description=...: prompt description (must be the last option when it contains commas)
func DescriptorFor[T any]() (*Descriptor, error) {
	var zero T
	return DescriptorFromType(reflect.TypeOf(zero))
}

// MustDescriptorFor is like DescriptorFor but panics on error.
func MustDescriptorFor[T any]() *Descriptor {
	d, err := DescriptorFor[T]()
	if err != nil {
		panic(err)
	}
	return d
}

// DescriptorFromType derives a descriptor from a struct type.
func DescriptorFromType(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot derive descriptor from nil type")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot derive descriptor from %s: not a struct", t.Kind())
	}

	fields := make([]*Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonFieldName(sf)
		if name == "-" {
			continue
		}
		f, err := fieldFromType(name, sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		if err := applyTag(f, sf); err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		fields = append(fields, f)
	}
	return NewDescriptor(t.Name(), fields...)
}

func fieldFromType(name string, t reflect.Type) (*Field, error) {
	optional := false
	if t.Kind() == reflect.Ptr {
		optional = true
		t = t.Elem()
	}

	var f *Field
	switch t.Kind() {
	case reflect.String:
		f = NewStringField(name)
	case reflect.Bool:
		f = NewBooleanField(name)
	case reflect.Int, reflect.Int64:
		f = NewIntegerField(name)
	case reflect.Int8, reflect.Int16, reflect.Int32:
		half := math.Ldexp(1, t.Bits()-1)
		f = NewIntegerField(name).WithRange(-half, half-1)
	case reflect.Uint:
		f = NewIntegerField(name).WithMinimum(0)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		f = NewIntegerField(name).WithRange(0, math.Ldexp(1, t.Bits())-1)
	case reflect.Slice, reflect.Array:
		// encoding/json 把 []byte 编成 base64 字符串，而不是整数数组
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return nil, fmt.Errorf("byte slices are not supported")
		}
		elem, err := fieldFromType("", t.Elem())
		if err != nil {
			return nil, fmt.Errorf("sequence element: %w", err)
		}
		f = NewSequenceField(name, elem)
	default:
		return nil, fmt.Errorf("unsupported kind %s", t.Kind())
	}
	f.Optional = optional
	return f, nil
}

func jsonFieldName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func applyTag(f *Field, sf reflect.StructField) error {
	opts := parseTagOptions(sf.Tag.Get("jsonschema"))
	if _, ok := opts["optional"]; ok {
		f.Optional = true
	}
	if desc, ok := opts["description"]; ok {
		f.Description = desc
	}
	if s, ok := opts["minimum"]; ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("minimum %q: %w", s, err)
		}
		if f.Minimum == nil || v > *f.Minimum {
			f.WithMinimum(v)
		}
	}
	if s, ok := opts["maximum"]; ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("maximum %q: %w", s, err)
		}
		if f.Maximum == nil || v < *f.Maximum {
			f.WithMaximum(v)
		}
	}
	if s, ok := opts["default"]; ok {
		v, err := parseDefault(f.Type, s)
		if err != nil {
			return fmt.Errorf("default %q: %w", s, err)
		}
		f.WithDefault(v)
	}
	return nil
}

// parseTagOptions splits key=value options. description swallows the rest
// of the tag so it may contain commas.
func parseTagOptions(tag string) map[string]string {
	opts := make(map[string]string)
	for tag != "" {
		var part string
		if strings.HasPrefix(strings.TrimSpace(tag), "description=") {
			part, tag = strings.TrimSpace(tag), ""
		} else {
			part, tag, _ = strings.Cut(tag, ",")
			part = strings.TrimSpace(part)
		}
		if part == "" {
			continue
		}
		if k, v, ok := strings.Cut(part, "="); ok {
			opts[k] = v
		} else {
			opts[part] = ""
		}
	}
	return opts
}

func parseDefault(t FieldType, s string) (any, error) {
	switch t {
	case TypeString:
		return s, nil
	case TypeInteger:
		return strconv.ParseInt(s, 10, 64)
	case TypeBoolean:
		return strconv.ParseBool(s)
	default:
		return nil, fmt.Errorf("defaults are not supported for %s fields", t)
	}
}
