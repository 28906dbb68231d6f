package structured

import (
	"encoding/json"
	"fmt"
)

// FieldType is the semantic type of a descriptor field.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInteger  FieldType = "integer"
	TypeBoolean  FieldType = "boolean"
	TypeSequence FieldType = "array"
)

// absent marks an optional field that was not supplied and has no default.
type absent struct{}

func (absent) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (absent) String() string               { return "<absent>" }

// Absent is stored in a Record for optional fields with no value and no default.
var Absent any = absent{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

// Field describes one named field. Sequence fields carry their element
// description in Items; the element's Name is ignored.
type Field struct {
	Name        string
	Type        FieldType
	Items       *Field
	Optional    bool
	Minimum     *float64
	Maximum     *float64
	Default     any
	HasDefault  bool
	Description string
}

// NewStringField creates a required string field.
func NewStringField(name string) *Field {
	return &Field{Name: name, Type: TypeString}
}

// NewIntegerField creates a required integer field.
func NewIntegerField(name string) *Field {
	return &Field{Name: name, Type: TypeInteger}
}

// NewBooleanField creates a required boolean field.
func NewBooleanField(name string) *Field {
	return &Field{Name: name, Type: TypeBoolean}
}

// NewSequenceField creates a required sequence field whose elements match items.
func NewSequenceField(name string, items *Field) *Field {
	return &Field{Name: name, Type: TypeSequence, Items: items}
}

// WithDescription sets the human-readable description used in prompts.
func (f *Field) WithDescription(desc string) *Field {
	f.Description = desc
	return f
}

// WithMinimum sets the inclusive lower bound.
func (f *Field) WithMinimum(min float64) *Field {
	f.Minimum = &min
	return f
}

// WithMaximum sets the inclusive upper bound.
func (f *Field) WithMaximum(max float64) *Field {
	f.Maximum = &max
	return f
}

// WithRange sets both inclusive bounds.
func (f *Field) WithRange(min, max float64) *Field {
	return f.WithMinimum(min).WithMaximum(max)
}

// WithDefault sets the value used when the field is absent.
func (f *Field) WithDefault(def any) *Field {
	f.Default = def
	f.HasDefault = true
	return f
}

// AsOptional marks the field optional.
func (f *Field) AsOptional() *Field {
	f.Optional = true
	return f
}

// Required reports whether every valid instance must carry the field.
func (f *Field) Required() bool {
	return !f.Optional && !f.HasDefault
}

func (f *Field) clone() *Field {
	if f == nil {
		return nil
	}
	c := *f
	if f.Minimum != nil {
		v := *f.Minimum
		c.Minimum = &v
	}
	if f.Maximum != nil {
		v := *f.Maximum
		c.Maximum = &v
	}
	c.Items = f.Items.clone()
	return &c
}

func (f *Field) check(path string) error {
	switch f.Type {
	case TypeString, TypeInteger, TypeBoolean:
	case TypeSequence:
		if f.Items == nil {
			return fmt.Errorf("field %q: sequence needs an element type", path)
		}
		if err := f.Items.check(path + "[]"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("field %q: unsupported type %q", path, f.Type)
	}
	if f.Minimum != nil && f.Maximum != nil && *f.Minimum > *f.Maximum {
		return fmt.Errorf("field %q: minimum %v exceeds maximum %v", path, *f.Minimum, *f.Maximum)
	}
	if (f.Minimum != nil || f.Maximum != nil) && f.Type != TypeInteger {
		return fmt.Errorf("field %q: range constraint on non-integer type %q", path, f.Type)
	}
	return nil
}

// Descriptor is an ordered set of uniquely named fields. It is read-only
// once built and safe for concurrent use.
type Descriptor struct {
	name   string
	fields []*Field
	index  map[string]int
}

// NewDescriptor builds a descriptor. Field names must be unique and
// declared defaults must satisfy their own field.
func NewDescriptor(name string, fields ...*Field) (*Descriptor, error) {
	d := &Descriptor{
		name:   name,
		fields: make([]*Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("descriptor %q: nil field", name)
		}
		if f.Name == "" {
			return nil, fmt.Errorf("descriptor %q: field without name", name)
		}
		if _, dup := d.index[f.Name]; dup {
			return nil, fmt.Errorf("descriptor %q: duplicate field %q", name, f.Name)
		}
		if err := f.check(f.Name); err != nil {
			return nil, fmt.Errorf("descriptor %q: %w", name, err)
		}
		c := f.clone()
		if c.HasDefault && c.Default != nil {
			norm, err := normalizeDefault(c)
			if err != nil {
				return nil, fmt.Errorf("descriptor %q: default of %q: %w", name, f.Name, err)
			}
			c.Default = norm
		}
		d.index[c.Name] = len(d.fields)
		d.fields = append(d.fields, c)
	}
	return d, nil
}

// MustDescriptor is like NewDescriptor but panics on error.
func MustDescriptor(name string, fields ...*Field) *Descriptor {
	d, err := NewDescriptor(name, fields...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the descriptor name.
func (d *Descriptor) Name() string { return d.name }

// Len returns the number of fields.
func (d *Descriptor) Len() int { return len(d.fields) }

// Fields returns copies of the fields in declaration order.
func (d *Descriptor) Fields() []Field {
	out := make([]Field, len(d.fields))
	for i, f := range d.fields {
		out[i] = *f.clone()
	}
	return out
}

// Field returns a copy of the named field.
func (d *Descriptor) Field(name string) (Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return Field{}, false
	}
	return *d.fields[i].clone(), true
}

// normalizeDefault runs a default through the same checks as decoded input,
// so Record values have one representation regardless of origin.
func normalizeDefault(f *Field) (any, error) {
	data, err := json.Marshal(f.Default)
	if err != nil {
		return nil, err
	}
	v, cerr := decodeValue(data)
	if cerr != nil {
		return nil, cerr
	}
	out, verr := validateValue(f, v, f.Name)
	if verr != nil {
		return nil, verr
	}
	return out, nil
}
