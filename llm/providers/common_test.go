package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/BaSui01/schemaflow/llm"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		msg       string
		code      llm.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, "bad key", llm.ErrUnauthorized, false},
		{http.StatusForbidden, "denied", llm.ErrForbidden, false},
		{http.StatusTooManyRequests, "slow down", llm.ErrRateLimited, true},
		{http.StatusBadRequest, "Your credit balance is too low", llm.ErrQuotaExceeded, false},
		{http.StatusBadRequest, "insufficient_quota", llm.ErrQuotaExceeded, false},
		{http.StatusBadRequest, "max_tokens: field required", llm.ErrInvalidRequest, false},
		{http.StatusBadGateway, "bad gateway", llm.ErrUpstreamError, true},
		{http.StatusServiceUnavailable, "unavailable", llm.ErrUpstreamError, true},
		{529, "Overloaded", llm.ErrModelOverloaded, true},
		{http.StatusInternalServerError, "oops", llm.ErrUpstreamError, true},
		{http.StatusNotFound, "no such model", llm.ErrUpstreamError, false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			e := MapHTTPError(tt.status, tt.msg, "claude")
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.retryable, e.Retryable)
			assert.Equal(t, tt.status, e.HTTPStatus)
			assert.Equal(t, "claude", e.Provider)
			assert.Equal(t, tt.msg, e.Message)
		})
	}
}

// Property: 5xx 一律可重试，除 429 外的 4xx 一律不可重试。
func TestProperty_MapHTTPError_Retryability(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		status := rapid.IntRange(400, 599).Draw(rt, "status")
		msg := rapid.String().Draw(rt, "msg")
		e := MapHTTPError(status, msg, "p")
		switch {
		case status >= 500:
			if !e.Retryable {
				rt.Fatalf("status %d should be retryable", status)
			}
		case status == http.StatusTooManyRequests:
			if !e.Retryable || e.Code != llm.ErrRateLimited {
				rt.Fatalf("429 mapped to %+v", e)
			}
		default:
			if e.Retryable {
				rt.Fatalf("status %d should not be retryable", status)
			}
		}
	})
}

func TestMapTransportError(t *testing.T) {
	e := MapTransportError(context.DeadlineExceeded, "gemini")
	assert.Equal(t, llm.ErrUpstreamTimeout, e.Code)
	assert.False(t, e.Retryable)
	assert.ErrorIs(t, e, context.DeadlineExceeded)

	e = MapTransportError(errors.New("dial tcp: connection refused"), "gemini")
	assert.Equal(t, llm.ErrUpstreamError, e.Code)
	assert.True(t, e.Retryable)
	assert.Equal(t, http.StatusBadGateway, e.HTTPStatus)
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai", `{"error":{"message":"Invalid key","type":"invalid_request_error"}}`, "Invalid key (type: invalid_request_error)"},
		{"anthropic", `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, "Overloaded (type: overloaded_error)"},
		{"gemini", `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`, "bad (status: INVALID_ARGUMENT)"},
		{"bare message", `{"error":{"message":"plain"}}`, "plain"},
		{"text", "  upstream timeout \n", "upstream timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadErrorMessage(strings.NewReader(tt.body)))
		})
	}
}

func TestCheckResponse(t *testing.T) {
	ok := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}
	assert.Nil(t, CheckResponse(ok, "p"))

	bad := &http.Response{StatusCode: http.StatusUnauthorized, Body: io.NopCloser(strings.NewReader(`{"error":{"message":"nope"}}`))}
	e := CheckResponse(bad, "p")
	if assert.NotNil(t, e) {
		assert.Equal(t, llm.ErrUnauthorized, e.Code)
		assert.Equal(t, "nope", e.Message)
	}
}

func TestChooseModel(t *testing.T) {
	assert.Equal(t, "req", ChooseModel(&llm.Request{Model: "req"}, "def", "fb"))
	assert.Equal(t, "def", ChooseModel(&llm.Request{}, "def", "fb"))
	assert.Equal(t, "fb", ChooseModel(nil, "", "fb"))
}

func TestEmitText(t *testing.T) {
	var texts []string
	for u := range EmitText("{}") {
		texts = append(texts, u.Text)
	}
	assert.Equal(t, []string{"{}"}, texts)

	_, open := <-EmitText("")
	assert.False(t, open)
}
