package structured

import (
	"bytes"
	"encoding/json"
)

// JSONSchema is the JSON Schema rendering of a descriptor, used for prompt
// instructions and provider-side schema hints.
type JSONSchema struct {
	Schema      string          `json:"$schema,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Type        FieldType       `json:"type,omitempty"`
	Properties  *PropertyList   `json:"properties,omitempty"`
	Required    []string        `json:"required,omitempty"`
	Items       *JSONSchema     `json:"items,omitempty"`
	Minimum     *float64        `json:"minimum,omitempty"`
	Maximum     *float64        `json:"maximum,omitempty"`
	Default     json.RawMessage `json:"default,omitempty"`
	Nullable    bool            `json:"nullable,omitempty"`
}

// Property is one named entry of an object schema.
type Property struct {
	Name   string
	Schema *JSONSchema
}

// PropertyList keeps object properties in declaration order when marshaled.
type PropertyList []Property

func (p PropertyList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(prop.Schema)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lookup returns the schema of the named property.
func (p PropertyList) Lookup(name string) *JSONSchema {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Schema
		}
	}
	return nil
}

// JSONSchema renders the descriptor as an object schema.
func (d *Descriptor) JSONSchema() *JSONSchema {
	props := make(PropertyList, 0, len(d.fields))
	var required []string
	for _, f := range d.fields {
		props = append(props, Property{Name: f.Name, Schema: fieldSchema(f)})
		if f.Required() {
			required = append(required, f.Name)
		}
	}
	return &JSONSchema{
		Schema:     "https://json-schema.org/draft/2020-12/schema",
		Title:      d.name,
		Type:       "object",
		Properties: &props,
		Required:   required,
	}
}

// ToJSONIndent renders the schema as indented JSON.
func (s *JSONSchema) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func fieldSchema(f *Field) *JSONSchema {
	s := &JSONSchema{
		Type:        f.Type,
		Description: f.Description,
		Minimum:     f.Minimum,
		Maximum:     f.Maximum,
		Nullable:    f.Optional,
	}
	if f.Type == TypeSequence {
		s.Items = fieldSchema(f.Items)
	}
	if f.HasDefault {
		if data, err := json.Marshal(f.Default); err == nil {
			s.Default = data
		}
	}
	return s
}
