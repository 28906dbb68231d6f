package structured

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func propertyDescriptor() *Descriptor {
	return MustDescriptor("Sample",
		NewStringField("title"),
		NewIntegerField("rating").WithRange(1, 5),
		NewSequenceField("pros", NewStringField("")),
		NewBooleanField("is_capital"),
		NewIntegerField("population").AsOptional(),
	)
}

// Property: 满足描述的对象序列化后再解码，得到与原对象相同的记录。
func TestProperty_Decode_RoundTrip(t *testing.T) {
	d := propertyDescriptor()
	rapid.Check(t, func(rt *rapid.T) {
		title := rapid.String().Draw(rt, "title")
		rating := rapid.IntRange(1, 5).Draw(rt, "rating")
		pros := rapid.SliceOf(rapid.String()).Draw(rt, "pros")
		capital := rapid.Bool().Draw(rt, "is_capital")
		withPopulation := rapid.Bool().Draw(rt, "with_population")
		population := rapid.Int64().Draw(rt, "population")

		obj := map[string]any{
			"title":      title,
			"rating":     rating,
			"pros":       append([]string{}, pros...),
			"is_capital": capital,
		}
		wantPros := make([]any, len(pros))
		for i, p := range pros {
			wantPros[i] = p
		}
		want := map[string]any{
			"title":      title,
			"rating":     int64(rating),
			"pros":       wantPros,
			"is_capital": capital,
			"population": Absent,
		}
		if withPopulation {
			obj["population"] = population
			want["population"] = population
		}

		data, err := json.Marshal(obj)
		if err != nil {
			rt.Fatalf("marshal: %v", err)
		}
		rec, err := Decode(string(data), d)
		if err != nil {
			rt.Fatalf("decode %s: %v", data, err)
		}
		assert.Equal(rt, want, rec.Map())
	})
}

// Property: 合法 JSON 对象的任意真前缀都被判定为 MalformedJSON，且不会返回记录。
func TestProperty_Decode_TruncatedIsMalformed(t *testing.T) {
	d := propertyDescriptor()
	rapid.Check(t, func(rt *rapid.T) {
		obj := map[string]any{
			"title":  rapid.String().Draw(rt, "title"),
			"rating": rapid.IntRange(1, 5).Draw(rt, "rating"),
			"pros":   []string{rapid.String().Draw(rt, "pro")},
		}
		data, _ := json.Marshal(obj)
		cut := rapid.IntRange(1, len(data)-1).Draw(rt, "cut")

		rec, err := Decode(string(data[:cut]), d)
		if rec != nil {
			rt.Fatalf("partial record returned for %q", data[:cut])
		}
		if KindOf(err) != KindMalformedJSON {
			rt.Fatalf("kind = %q for %q, want malformed_json", KindOf(err), data[:cut])
		}
	})
}

// Property: 未声明的额外字段从不导致校验失败。
func TestProperty_Validate_ExtraFieldsNeverFail(t *testing.T) {
	d := MustDescriptor("R", NewIntegerField("rating").WithRange(1, 5))
	rapid.Check(t, func(rt *rapid.T) {
		key := rapid.StringMatching(`[a-z]{3,10}`).Filter(func(s string) bool { return s != "rating" }).Draw(rt, "key")
		value := rapid.OneOf(
			rapid.Just[any]("text"),
			rapid.Just[any](nil),
			rapid.Just[any](json.Number("99")),
			rapid.Just[any]([]any{1, 2}),
		).Draw(rt, "value")

		_, err := d.Validate(map[string]any{"rating": json.Number("3"), key: value})
		if err != nil {
			rt.Fatalf("extra key %q rejected: %v", key, err)
		}
	})
}

func TestProperty_Validate_InclusiveRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	d := MustDescriptor("R", NewIntegerField("rating").WithRange(1, 5))

	properties.Property("rating accepted iff 1 <= rating <= 5", prop.ForAll(
		func(n int) bool {
			_, err := Decode(fmt.Sprintf(`{"rating": %d}`, n), d)
			inRange := n >= 1 && n <= 5
			if inRange {
				return err == nil
			}
			cerr, ok := AsError(err)
			return ok && cerr.Kind == KindConstraintViolation && cerr.Field == "rating"
		},
		gen.IntRange(-50, 50),
	))

	properties.TestingRun(t)
}
