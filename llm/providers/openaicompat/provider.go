// =============================================================================
// SchemaFlow OpenAI-Compatible Streaming Adapter
// =============================================================================
// Shared implementation for Chat Completions style providers. The response
// is always streamed over SSE and each non-empty content delta becomes one
// llm.Unit. Providers embed this and only override what differs (name,
// base URL, default model, headers).
// =============================================================================

package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/internal/tlsutil"
	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/llm/middleware"
	"github.com/BaSui01/schemaflow/llm/providers"
)

// Config holds the configuration for an OpenAI-compatible provider.
type Config struct {
	// ProviderName is the unique identifier for this provider (e.g., "openai").
	ProviderName string

	// APIKey is the authentication key for the provider's API.
	APIKey string

	// BaseURL is the base URL for the provider's API (e.g., "https://api.openai.com").
	BaseURL string

	// DefaultModel is the model to use when none is specified in the request.
	DefaultModel string

	// FallbackModel is used when both request and DefaultModel are empty.
	FallbackModel string

	// Timeout bounds the whole exchange including the stream body. Zero
	// leaves the stream bounded only by the caller's context.
	Timeout time.Duration

	// EndpointPath is the chat completions endpoint path. Defaults to "/v1/chat/completions".
	EndpointPath string

	// BuildHeaders is an optional function to set custom headers on each request.
	// If nil, the default "Authorization: Bearer <apiKey>" header is used.
	BuildHeaders func(req *http.Request, apiKey string)

	// RequestHook is an optional function to modify the request body before sending.
	RequestHook func(req *llm.Request, body *ChatRequest)
}

// ChatMessage is one Chat Completions message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat constrains the output format.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the Chat Completions request body.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature,omitempty"`
	TopP           float32         `json:"top_p,omitempty"`
	Stop           []string        `json:"stop,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Provider is the base implementation for all OpenAI-compatible adapters.
type Provider struct {
	Cfg           Config
	Client        *http.Client
	Logger        *zap.Logger
	RewriterChain *middleware.RewriterChain
}

// New creates a new OpenAI-compatible provider with the given config.
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/v1/chat/completions"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		Cfg:    cfg,
		Client: tlsutil.SecureHTTPClient(cfg.Timeout),
		Logger: logger.With(zap.String("provider", cfg.ProviderName)),
		RewriterChain: middleware.NewRewriterChain(
			middleware.NewRequestCleaner(),
		),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.Cfg.ProviderName }

// SetBuildHeaders sets custom header builder for the provider.
func (p *Provider) SetBuildHeaders(fn func(req *http.Request, apiKey string)) {
	p.Cfg.BuildHeaders = fn
}

// buildHeaders applies headers to the HTTP request.
func (p *Provider) buildHeaders(req *http.Request, apiKey string) {
	if p.Cfg.BuildHeaders != nil {
		p.Cfg.BuildHeaders(req, apiKey)
	} else {
		providers.BearerTokenHeaders(req, apiKey)
	}
	req.Header.Set("Accept", "text/event-stream")
}

// endpoint builds the full URL for a given path.
func (p *Provider) endpoint(path string) string {
	return fmt.Sprintf("%s%s", strings.TrimRight(p.Cfg.BaseURL, "/"), path)
}

// convertMessages flattens the request into Chat Completions messages with
// the system prompt first.
func convertMessages(req *llm.Request) []ChatMessage {
	out := make([]ChatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, ChatMessage{Role: string(llm.RoleSystem), Content: req.System})
	}
	for _, m := range req.Messages {
		out = append(out, ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// Send opens a streaming chat completion. Errors before the first byte of the
// stream are returned directly; later failures arrive as an error unit.
func (p *Provider) Send(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
	rewritten, err := p.RewriterChain.Execute(ctx, req)
	if err != nil {
		return nil, llm.NewError(llm.ErrInvalidRequest, fmt.Sprintf("request rewrite failed: %v", err)).
			WithHTTPStatus(http.StatusBadRequest).WithProvider(p.Name())
	}
	req = rewritten

	apiKey := llm.ResolveAPIKey(ctx, p.Cfg.APIKey)
	if apiKey == "" {
		return nil, llm.NewError(llm.ErrUnauthorized, "missing API key").WithProvider(p.Name())
	}

	body := ChatRequest{
		Model:       providers.ChooseModel(req, p.Cfg.DefaultModel, p.Cfg.FallbackModel),
		Messages:    convertMessages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Stream:      true,
	}
	if req.JSONHint {
		body.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	if p.Cfg.RequestHook != nil {
		p.Cfg.RequestHook(req, &body)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llm.NewError(llm.ErrInvalidRequest, "failed to marshal request").WithCause(err).WithProvider(p.Name())
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(p.Cfg.EndpointPath), bytes.NewReader(payload))
	if err != nil {
		return nil, llm.NewError(llm.ErrInvalidRequest, "failed to create request").WithCause(err).WithProvider(p.Name())
	}
	p.buildHeaders(httpReq, apiKey)

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, providers.MapTransportError(err, p.Name())
	}
	if e := providers.CheckResponse(resp, p.Name()); e != nil {
		providers.SafeCloseBody(resp.Body)
		return nil, e
	}

	p.Logger.Debug("stream opened", zap.String("run_id", req.RunID), zap.String("model", body.Model))
	return StreamSSE(ctx, resp.Body, p.Name()), nil
}
