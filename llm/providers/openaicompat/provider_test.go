package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/testutil"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func sseDelta(content string) string {
	return fmt.Sprintf("data: {\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", content)
}

const sseFinish = "data: {\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n"

func streamServer(t *testing.T, events ...string) (*Provider, *ChatRequest) {
	t.Helper()
	got := &ChatRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, e := range events {
			_, _ = io.WriteString(w, e)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return New(Config{ProviderName: "openai", APIKey: "test-key", BaseURL: srv.URL, FallbackModel: "gpt-4"}, zap.NewNop()), got
}

func summaryRequest() *llm.Request {
	return &llm.Request{
		System:   "You are an assistant that generates structured summaries.",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Summarize the text"}},
		JSONHint: true,
	}
}

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

// ---------------------------------------------------------------------------
// New() constructor
// ---------------------------------------------------------------------------

func TestNew_Defaults(t *testing.T) {
	p := New(Config{ProviderName: "test"}, nil)
	require.NotNil(t, p)
	assert.Equal(t, "/v1/chat/completions", p.Cfg.EndpointPath)
	assert.Equal(t, "test", p.Name())
	assert.NotNil(t, p.Client)
	assert.NotNil(t, p.Logger)
	assert.NotNil(t, p.RewriterChain)
	assert.Zero(t, p.Client.Timeout)
}

// ---------------------------------------------------------------------------
// Send
// ---------------------------------------------------------------------------

func TestProvider_Send_Stream(t *testing.T) {
	p, got := streamServer(t,
		"data: {\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\",\"content\":\"\"}}]}\n\n",
		sseDelta(`{"summary": "`),
		": keep-alive comment\n\n",
		sseDelta(`short"`),
		sseDelta(`}`),
		sseFinish,
		"data: [DONE]\n\n",
	)

	ch, err := p.Send(testutil.TestContext(t), summaryRequest())
	require.NoError(t, err)
	texts, unitErr := testutil.CollectUnits(t, ch)
	assert.Nil(t, unitErr)
	assert.Equal(t, []string{`{"summary": "`, `short"`, `}`}, texts)

	assert.Equal(t, "gpt-4", got.Model)
	assert.True(t, got.Stream)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestProvider_Send_RequestHook(t *testing.T) {
	p, got := streamServer(t, "data: [DONE]\n\n")
	p.Cfg.RequestHook = func(_ *llm.Request, b *ChatRequest) { b.Model = "gpt-4o-mini" }
	ch, err := p.Send(testutil.TestContext(t), summaryRequest())
	require.NoError(t, err)
	texts, unitErr := testutil.CollectUnits(t, ch)
	assert.Nil(t, unitErr)
	assert.Empty(t, texts)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestProvider_Send_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	}))
	defer srv.Close()

	p := New(Config{ProviderName: "openai", APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	ch, err := p.Send(testutil.TestContext(t), summaryRequest())
	assert.Nil(t, ch)
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrRateLimited, llmErr.Code)
	assert.True(t, llmErr.Retryable)
	assert.Equal(t, "Rate limit reached (type: requests)", llmErr.Message)
}

func TestProvider_Send_MissingKey(t *testing.T) {
	p := New(Config{ProviderName: "openai", BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	_, err := p.Send(context.Background(), summaryRequest())
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrUnauthorized, llmErr.Code)
}

// ---------------------------------------------------------------------------
// StreamSSE
// ---------------------------------------------------------------------------

func TestStreamSSE_Completion(t *testing.T) {
	tests := []struct {
		name    string
		stream  string
		want    []string
		errCode llm.ErrorCode
	}{
		{"done marker", sseDelta("a") + sseDelta("b") + "data: [DONE]\n", []string{"a", "b"}, ""},
		{"finish reason then eof", sseDelta("a") + sseFinish, []string{"a"}, ""},
		{"no trailing newline", sseDelta("a") + "data: [DONE]", []string{"a"}, ""},
		{"eof before completion", sseDelta("a") + sseDelta("b"), []string{"a", "b"}, llm.ErrStreamInterrupted},
		{"malformed event", sseDelta("a") + "data: {not json\n\n" + sseDelta("b"), []string{"a"}, llm.ErrUpstreamError},
		{"in-band error", sseDelta("a") + "data: {\"error\":{\"message\":\"server overloaded\"}}\n\n", []string{"a"}, llm.ErrUpstreamError},
		{"empty stream", "", nil, llm.ErrStreamInterrupted},
		{"other choice index", "data: {\"choices\":[{\"index\":1,\"delta\":{\"content\":\"x\"}}]}\n\ndata: [DONE]\n", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts, unitErr := testutil.CollectUnits(t, StreamSSE(context.Background(), body(tt.stream), "openai"))
			assert.Equal(t, tt.want, texts)
			if tt.errCode == "" {
				assert.Nil(t, unitErr)
				return
			}
			require.NotNil(t, unitErr)
			assert.Equal(t, tt.errCode, unitErr.Code)
			assert.Equal(t, "openai", unitErr.Provider)
		})
	}
}

type failingReader struct{ data *strings.Reader }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.data.Len() == 0 {
		return 0, errors.New("connection reset by peer")
	}
	return f.data.Read(p)
}

func (f *failingReader) Close() error { return nil }

func TestStreamSSE_ReadError(t *testing.T) {
	r := &failingReader{data: strings.NewReader(sseDelta("a"))}
	texts, unitErr := testutil.CollectUnits(t, StreamSSE(context.Background(), r, "openai"))
	assert.Equal(t, []string{"a"}, texts)
	require.NotNil(t, unitErr)
	assert.Equal(t, llm.ErrUpstreamError, unitErr.Code)
	assert.True(t, unitErr.Retryable)
}

func TestStreamSSE_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	ch := StreamSSE(ctx, pr, "openai")

	go func() { _, _ = io.WriteString(pw, sseDelta("a")) }()
	u := <-ch
	assert.Equal(t, "a", u.Text)

	cancel()
	go func() {
		_, _ = io.WriteString(pw, sseDelta("b"))
		_ = pw.Close()
	}()

	select {
	case _, ok := <-ch:
		if ok {
			// a unit may already be in flight; the channel must close next
			_, ok = <-ch
		}
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
