package structured

import (
	"regexp"
	"strings"
)

// PreFilter transforms assembled text before decoding. The pipeline runs no
// filter unless one is installed with WithPreFilter.
type PreFilter func(candidate string) string

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON is a lenient PreFilter for models that explain before or after
// their JSON. It returns the body of the first markdown code fence, or the
// text between the first '{' and the last '}', or the input unchanged.
func ExtractJSON(candidate string) string {
	text := strings.TrimSpace(candidate)

	if strings.Contains(text, "```") {
		if m := fencePattern.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return candidate
}

// ChainPreFilters runs filters left to right.
func ChainPreFilters(filters ...PreFilter) PreFilter {
	return func(candidate string) string {
		for _, f := range filters {
			if f != nil {
				candidate = f(candidate)
			}
		}
		return candidate
	}
}
