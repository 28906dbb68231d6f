package llm

import (
	"context"
	"encoding/json"
	"strings"
)

type credentialKey struct{}

// CredentialOverride 替换单次 Send 使用的 API Key，只经由 context 传递。
// 格式化与 JSON 输出都会隐去密钥。
type CredentialOverride struct {
	APIKey string
}

func (c CredentialOverride) masked() string {
	if c.APIKey == "" {
		return ""
	}
	return "***"
}

func (c CredentialOverride) String() string {
	if m := c.masked(); m != "" {
		return "CredentialOverride{APIKey:" + m + "}"
	}
	return "CredentialOverride{}"
}

func (c CredentialOverride) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		APIKey string `json:"api_key,omitempty"`
	}{c.masked()})
}

// WithCredentialOverride 返回携带 c 的 ctx；APIKey 为空白时原样返回。
func WithCredentialOverride(ctx context.Context, c CredentialOverride) context.Context {
	if strings.TrimSpace(c.APIKey) == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey{}, c)
}

func CredentialOverrideFromContext(ctx context.Context) (CredentialOverride, bool) {
	c, ok := ctx.Value(credentialKey{}).(CredentialOverride)
	return c, ok
}

// ResolveAPIKey 优先使用 ctx 中的覆盖值，否则返回 fallback。
func ResolveAPIKey(ctx context.Context, fallback string) string {
	c, _ := CredentialOverrideFromContext(ctx)
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	return fallback
}
