package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndUnwrap(t *testing.T) {
	root := errors.New("connection reset")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("openai")

	assert.True(t, errors.Is(err, root))
	assert.Equal(t, 502, err.HTTPStatus)
	assert.True(t, err.Retryable)
	assert.Equal(t, "openai", err.Provider)
	assert.Contains(t, err.Error(), "LLM_UPSTREAM_ERROR")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSingleUnit(t *testing.T) {
	var got []Unit
	for u := range SingleUnit(`{"a":1}`) {
		got = append(got, u)
	}
	require.Len(t, got, 1)
	assert.Equal(t, `{"a":1}`, got[0].Text)

	count := 0
	for range SingleUnit("") {
		count++
	}
	assert.Zero(t, count, "empty text must not produce a unit")
}

func TestRequest_Prompt(t *testing.T) {
	req := &Request{Messages: []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hello"},
	}}
	assert.Equal(t, "hello", req.Prompt())
}

func TestResolveAPIKey(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "cfg-key", ResolveAPIKey(ctx, "cfg-key"))

	ctx = WithCredentialOverride(ctx, CredentialOverride{APIKey: "  override  "})
	assert.Equal(t, "override", ResolveAPIKey(ctx, "cfg-key"))

	c, ok := CredentialOverrideFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "CredentialOverride{APIKey:***}", c.String())

	data, err := c.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"api_key":"***"}`, string(data))
}

func TestWithCredentialOverride_EmptyKeepsContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithCredentialOverride(ctx, CredentialOverride{}))
	_, ok := CredentialOverrideFromContext(ctx)
	assert.False(t, ok)
}
