package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingCredential 表示所有候选环境变量都为空。
var ErrMissingCredential = errors.New("missing credential")

// 各服务商的 API Key 环境变量，按优先级排列。
var (
	ClaudeKeyEnv = []string{"CLAUDE_API_KEY", "ANTHROPIC_API_KEY"}
	GeminiKeyEnv = []string{"GEMINI_API_KEY"}
	OpenAIKeyEnv = []string{"OPENAI_API_KEY"}
)

// ResolveAPIKey 返回第一个非空环境变量的值（去除首尾空白）。
func ResolveAPIKey(names ...string) (string, error) {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: set one of %s", ErrMissingCredential, strings.Join(names, ", "))
}

// ResolveKey 返回配置中的 Key，未配置时按 names 从环境变量解析。
func (p ProviderConfig) ResolveKey(names ...string) (string, error) {
	if key := strings.TrimSpace(p.APIKey); key != "" {
		return key, nil
	}
	return ResolveAPIKey(names...)
}
