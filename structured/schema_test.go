package structured

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movieDescriptor(t *testing.T) *Descriptor {
	t.Helper()
	d, err := NewDescriptor("MovieReview",
		NewStringField("title").WithDescription("The title of the movie"),
		NewIntegerField("rating").WithRange(1, 5).WithDescription("Rating from 1 to 5"),
		NewSequenceField("pros", NewStringField("")),
		NewSequenceField("cons", NewStringField("")),
	)
	require.NoError(t, err)
	return d
}

func cityDescriptor(t *testing.T) *Descriptor {
	t.Helper()
	d, err := NewDescriptor("CityInfo",
		NewStringField("city_name"),
		NewStringField("country"),
		NewBooleanField("is_capital"),
		NewIntegerField("population").AsOptional(),
		NewStringField("description"),
	)
	require.NoError(t, err)
	return d
}

func TestNewDescriptor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		fields []*Field
		want   string
	}{
		{"duplicate", []*Field{NewStringField("a"), NewIntegerField("a")}, "duplicate field"},
		{"unnamed", []*Field{NewStringField("")}, "without name"},
		{"nil field", []*Field{nil}, "nil field"},
		{"sequence without items", []*Field{{Name: "xs", Type: TypeSequence}}, "element type"},
		{"unknown type", []*Field{{Name: "x", Type: "float"}}, "unsupported type"},
		{"inverted range", []*Field{NewIntegerField("r").WithRange(5, 1)}, "exceeds maximum"},
		{"range on string", []*Field{NewStringField("s").WithMinimum(1)}, "non-integer"},
		{"default out of range", []*Field{NewIntegerField("r").WithRange(1, 5).WithDefault(9)}, "default of \"r\""},
		{"default wrong type", []*Field{NewBooleanField("b").WithDefault("yes")}, "default of \"b\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDescriptor("bad", tt.fields...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustDescriptor_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustDescriptor("bad", NewStringField("a"), NewStringField("a"))
	})
}

func TestDescriptor_FieldsKeepOrder(t *testing.T) {
	d := movieDescriptor(t)
	assert.Equal(t, "MovieReview", d.Name())
	assert.Equal(t, 4, d.Len())

	var names []string
	for _, f := range d.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"title", "rating", "pros", "cons"}, names)

	rating, ok := d.Field("rating")
	require.True(t, ok)
	require.NotNil(t, rating.Minimum)
	assert.Equal(t, 1.0, *rating.Minimum)
	assert.Equal(t, 5.0, *rating.Maximum)
	assert.True(t, rating.Required())

	_, ok = d.Field("missing")
	assert.False(t, ok)
}

func TestDescriptor_IsolatedFromCallerFields(t *testing.T) {
	f := NewIntegerField("rating").WithRange(1, 5)
	d := MustDescriptor("R", f)
	f.WithMaximum(100)

	_, err := d.Validate(map[string]any{"rating": 50})
	assert.Equal(t, KindConstraintViolation, KindOf(err))

	copied, _ := d.Field("rating")
	*copied.Maximum = 100
	_, err = d.Validate(map[string]any{"rating": 50})
	assert.Equal(t, KindConstraintViolation, KindOf(err))
}

func TestField_Required(t *testing.T) {
	assert.True(t, NewStringField("a").Required())
	assert.False(t, NewStringField("a").AsOptional().Required())
	assert.False(t, NewStringField("a").WithDefault("x").Required())
}

func TestDescriptor_JSONSchema(t *testing.T) {
	d := MustDescriptor("CityInfo",
		NewStringField("city_name").WithDescription("Name of the city"),
		NewIntegerField("population").AsOptional().WithMinimum(0),
		NewSequenceField("tags", NewStringField("")).WithDefault([]string{"x"}),
	)

	s := d.JSONSchema()
	assert.Equal(t, "CityInfo", s.Title)
	assert.Equal(t, []string{"city_name"}, s.Required)
	require.NotNil(t, s.Properties)
	assert.Equal(t, TypeInteger, s.Properties.Lookup("population").Type)
	assert.True(t, s.Properties.Lookup("population").Nullable)
	assert.Equal(t, TypeString, s.Properties.Lookup("tags").Items.Type)
	assert.Nil(t, s.Properties.Lookup("nope"))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	text := string(data)
	assert.Less(t, strings.Index(text, `"city_name"`), strings.Index(text, `"population"`))
	assert.Less(t, strings.Index(text, `"population"`), strings.Index(text, `"tags"`))
	assert.Contains(t, text, `"default":["x"]`)
	assert.Contains(t, text, `"minimum":0`)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, "object", generic["type"])
}

func TestInstruction_MentionsFields(t *testing.T) {
	d := movieDescriptor(t)
	text := Instruction(d)
	assert.Contains(t, text, "- title: The title of the movie")
	assert.Contains(t, text, "- rating: Rating from 1 to 5")
	assert.Contains(t, text, `"maximum": 5`)
	assert.NotContains(t, text, "- pros")
}

func TestAbsent(t *testing.T) {
	assert.True(t, IsAbsent(Absent))
	assert.False(t, IsAbsent(nil))
	data, err := json.Marshal(Absent)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
