package claude

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

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-3-opus-20240229"
	defaultMaxTokens = 1000
	apiVersion       = "2023-06-01"
)

// ClaudeProvider 通过 Anthropic Messages API 生成一次性（非流式）响应。
// 与 OpenAI 的差异：
// 1. 认证使用 x-api-key 请求头而非 Bearer Token
// 2. system 消息单独传递
// 3. max_tokens 为必填字段
// 4. 响应 content 为块数组，只取 text 块
type ClaudeProvider struct {
	cfg           providers.ClaudeConfig
	client        *http.Client
	logger        *zap.Logger
	rewriterChain *middleware.RewriterChain
}

// NewClaudeProvider 创建 Claude Provider。
func NewClaudeProvider(cfg providers.ClaudeConfig, logger *zap.Logger) *ClaudeProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaudeProvider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.TimeoutOr(60 * time.Second)), // Claude 响应可能较慢
		logger: logger.With(zap.String("provider", "claude")),
		rewriterChain: middleware.NewRewriterChain(
			middleware.NewRequestCleaner(),
			middleware.DefaultMaxTokens(maxTokensOr(cfg.MaxTokens)),
		),
	}
}

func (p *ClaudeProvider) Name() string { return "claude" }

type claudeMessage struct {
	Role    string          `json:"role"` // user 或 assistant
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"` // text, tool_use, ...
	Text string `json:"text,omitempty"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float32         `json:"temperature,omitempty"`
	TopP        float32         `json:"top_p,omitempty"`
	TopK        int             `json:"top_k,omitempty"`
	StopSeq     []string        `json:"stop_sequences,omitempty"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Content    []claudeContent `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      *claudeUsage    `json:"usage,omitempty"`
}

func (p *ClaudeProvider) buildHeaders(req *http.Request, apiKey string) {
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// convertToClaudeMessages 将统一格式转换为 Claude 格式。
// system 角色的消息并入 system 字段，Claude 的 messages 不接受 system 角色。
func convertToClaudeMessages(system string, msgs []llm.Message) (string, []claudeMessage) {
	parts := make([]string, 0, 1)
	if system != "" {
		parts = append(parts, system)
	}
	out := make([]claudeMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			parts = append(parts, m.Content)
			continue
		}
		out = append(out, claudeMessage{
			Role:    string(m.Role),
			Content: []claudeContent{{Type: "text", Text: m.Content}},
		})
	}
	return strings.Join(parts, "\n\n"), out
}

// Send 发送一次 Messages 请求。成功时通道最多包含一个单元：所有 text 块的拼接。
func (p *ClaudeProvider) Send(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
	rewritten, err := p.rewriterChain.Execute(ctx, req)
	if err != nil {
		return nil, llm.NewError(llm.ErrInvalidRequest, fmt.Sprintf("request rewrite failed: %v", err)).
			WithHTTPStatus(http.StatusBadRequest).WithProvider(p.Name())
	}
	req = rewritten

	apiKey := llm.ResolveAPIKey(ctx, p.cfg.APIKey)
	if apiKey == "" {
		return nil, llm.NewError(llm.ErrUnauthorized, "missing API key").WithProvider(p.Name())
	}

	system, messages := convertToClaudeMessages(req.System, req.Messages)
	body := claudeRequest{
		Model:       providers.ChooseModel(req, p.cfg.Model, defaultModel),
		Messages:    messages,
		System:      system,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		TopK:        req.TopK,
		StopSeq:     req.Stop,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llm.NewError(llm.ErrInvalidRequest, "failed to marshal request").WithCause(err).WithProvider(p.Name())
	}
	endpoint := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, llm.NewError(llm.ErrInvalidRequest, "failed to create request").WithCause(err).WithProvider(p.Name())
	}
	p.buildHeaders(httpReq, apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, providers.MapTransportError(err, p.Name())
	}
	defer providers.SafeCloseBody(resp.Body)

	if e := providers.CheckResponse(resp, p.Name()); e != nil {
		return nil, e
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, providers.MapTransportError(fmt.Errorf("decode messages response: %w", err), p.Name())
	}

	if cr.StopReason == "max_tokens" {
		p.logger.Warn("response truncated at max_tokens",
			zap.String("run_id", req.RunID),
			zap.Int("max_tokens", body.MaxTokens),
		)
	}
	if cr.Usage != nil {
		p.logger.Debug("messages usage",
			zap.String("run_id", req.RunID),
			zap.Int("input_tokens", cr.Usage.InputTokens),
			zap.Int("output_tokens", cr.Usage.OutputTokens),
		)
	}
	return providers.EmitText(responseText(cr)), nil
}

// responseText 拼接所有 text 块，忽略其他类型的块
func responseText(cr claudeResponse) string {
	var sb strings.Builder
	for _, c := range cr.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// maxTokensOr 在未配置时回落到 defaultMaxTokens，Claude 要求必须提供 max_tokens。
func maxTokensOr(n int) int {
	if n > 0 {
		return n
	}
	return defaultMaxTokens
}
