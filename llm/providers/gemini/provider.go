package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/internal/tlsutil"
	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/llm/middleware"
	"github.com/BaSui01/schemaflow/llm/providers"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash-exp"
)

// GeminiProvider 通过 generateContent 接口生成一次性响应
// Gemini API 特点：
// 1. 使用 x-goog-api-key 请求头认证
// 2. 角色名使用 model 而不是 assistant
// 3. system 提示通过 systemInstruction 传递
// 4. generationConfig.responseMimeType 默认约束输出为 JSON
type GeminiProvider struct {
	cfg           providers.GeminiConfig
	client        *http.Client
	logger        *zap.Logger
	rewriterChain *middleware.RewriterChain
}

// NewGeminiProvider 创建 Gemini Provider
func NewGeminiProvider(cfg providers.GeminiConfig, logger *zap.Logger) *GeminiProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiProvider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.TimeoutOr(60 * time.Second)),
		logger: logger.With(zap.String("provider", "gemini")),
		rewriterChain: middleware.NewRewriterChain(
			middleware.NewRequestCleaner(),
		),
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Gemini 消息结构
type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user, model
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float32  `json:"temperature,omitempty"`
	TopP             float32  `json:"topP,omitempty"`
	TopK             int      `json:"topK,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	StopSequences    []string `json:"stopSequences,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *geminiUsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string                `json:"modelVersion,omitempty"`
}

func (p *GeminiProvider) buildHeaders(req *http.Request, apiKey string) {
	// Gemini 使用 x-goog-api-key 认证
	req.Header.Set("x-goog-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// convertToGeminiContents 将统一格式转换为 Gemini 格式
func convertToGeminiContents(system string, msgs []llm.Message) (*geminiContent, []geminiContent) {
	var systemParts []geminiPart
	if system != "" {
		systemParts = append(systemParts, geminiPart{Text: system})
	}

	contents := make([]geminiContent, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			systemParts = append(systemParts, geminiPart{Text: m.Content})
			continue
		}
		role := string(m.Role)
		if m.Role == llm.RoleAssistant {
			role = "model" // Gemini 使用 "model" 而不是 "assistant"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	if len(systemParts) == 0 {
		return nil, contents
	}
	return &geminiContent{Parts: systemParts}, contents
}

func (p *GeminiProvider) endpoint(model string) string {
	model = strings.TrimPrefix(model, "models/")
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"), url.PathEscape(model))
}

// Send 调用 generateContent。成功时通道最多包含一个单元：首个候选的全部文本 part 的拼接。
func (p *GeminiProvider) Send(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
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

	system, contents := convertToGeminiContents(req.System, req.Messages)
	body := geminiRequest{
		Contents:          contents,
		SystemInstruction: system,
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			TopK:            req.TopK,
			MaxOutputTokens: req.MaxTokens,
			StopSequences:   req.Stop,
		},
	}
	if req.JSONHint || !p.cfg.PlainText {
		body.GenerationConfig.ResponseMimeType = "application/json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llm.NewError(llm.ErrInvalidRequest, "failed to marshal request").WithCause(err).WithProvider(p.Name())
	}
	model := providers.ChooseModel(req, p.cfg.Model, defaultModel)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(model), bytes.NewReader(payload))
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

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, providers.MapTransportError(fmt.Errorf("decode generateContent response: %w", err), p.Name())
	}

	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return nil, llm.NewError(llm.ErrContentFiltered, "prompt blocked: "+gr.PromptFeedback.BlockReason).
			WithProvider(p.Name())
	}
	if gr.UsageMetadata != nil {
		p.logger.Debug("generateContent usage",
			zap.String("run_id", req.RunID),
			zap.String("model", model),
			zap.Int("prompt_tokens", gr.UsageMetadata.PromptTokenCount),
			zap.Int("candidate_tokens", gr.UsageMetadata.CandidatesTokenCount),
		)
	}
	return providers.EmitText(p.candidateText(req.RunID, gr)), nil
}

// candidateText 拼接首个候选的文本 part，跳过思考 part
func (p *GeminiProvider) candidateText(runID string, gr geminiResponse) string {
	if len(gr.Candidates) == 0 {
		return ""
	}
	c := gr.Candidates[0]
	if c.FinishReason != "" && c.FinishReason != "STOP" {
		p.logger.Warn("candidate finished early",
			zap.String("run_id", runID),
			zap.String("finish_reason", c.FinishReason),
		)
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
