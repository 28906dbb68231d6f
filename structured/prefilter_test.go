package structured

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"commentary", `Here it is: {"a":{"b":2}} hope it helps`, `{"a":{"b":2}}`},
		{"no object", "nothing here", "nothing here"},
		{"array", `[1,2]`, `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestChainPreFilters(t *testing.T) {
	f := ChainPreFilters(strings.TrimSpace, nil, ExtractJSON)
	assert.Equal(t, `{"a":1}`, f("  note {\"a\":1}  "))
	assert.Equal(t, "x", ChainPreFilters()("x"))
}

func TestExtractJSON_MakesCommentaryDecodable(t *testing.T) {
	d := MustDescriptor("R", NewIntegerField("rating").WithRange(1, 5))

	_, err := Decode(`Sure! {"rating": 4}`, d)
	assert.Equal(t, KindMalformedJSON, KindOf(err))

	rec, err := Decode(ExtractJSON(`Sure! {"rating": 4}`), d)
	assert.NoError(t, err)
	n, _ := rec.Int("rating")
	assert.Equal(t, int64(4), n)
}
