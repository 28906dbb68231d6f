package tokenizer

import (
	"strings"
	"sync"
)

// Tokenizer 是统一的 Token 计数接口。
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// MaxTokens 返回模型的最大上下文长度.
	MaxTokens() int

	// Name 返回分词器的名称.
	Name() string
}

// 非 OpenAI 模型的上下文长度，仅供估算器报告 MaxTokens。
var contextWindows = map[string]int{
	"claude-3":         200000,
	"claude-sonnet-4":  200000,
	"claude-opus-4":    200000,
	"gemini-2.0":       1048576,
	"gemini-1.5-pro":   2097152,
	"gemini-1.5-flash": 1048576,
}

var (
	cache   = make(map[string]Tokenizer)
	cacheMu sync.Mutex
)

// ForModel 返回 model 对应的分词器。同一模型多次调用返回同一实例，
// tiktoken 编码表只加载一次。
func ForModel(model string) Tokenizer {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if t, ok := cache[model]; ok {
		return t
	}
	var t Tokenizer
	if isOpenAIModel(model) {
		t = NewTiktokenTokenizer(model)
	} else {
		t = NewEstimatorTokenizer(model, lookupPrefix(contextWindows, model))
	}
	cache[model] = t
	return t
}

func isOpenAIModel(model string) bool {
	return strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "text-embedding-")
}

// lookupPrefix 先精确匹配，再取最长前缀匹配。
func lookupPrefix[V any](m map[string]V, model string) V {
	if v, ok := m[model]; ok {
		return v
	}
	var (
		best    V
		bestLen int
	)
	for prefix, v := range m {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best, bestLen = v, len(prefix)
		}
	}
	return best
}
