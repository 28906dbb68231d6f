package openai

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/llm/providers"
	"github.com/BaSui01/schemaflow/llm/providers/openaicompat"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4"
)

// OpenAIProvider 实现 OpenAI 的流式 Adapter.
// 请求、SSE 解析与错误映射全部委托给嵌入的 openaicompat.Provider，
// 这里只补充默认地址、默认模型与 Organization header.
type OpenAIProvider struct {
	*openaicompat.Provider
	openaiCfg providers.OpenAIConfig
}

// NewOpenAIProvider 创建新的 OpenAI 提供者实例.
func NewOpenAIProvider(cfg providers.OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	p := &OpenAIProvider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName:  "openai",
			APIKey:        cfg.APIKey,
			BaseURL:       cfg.BaseURL,
			DefaultModel:  cfg.Model,
			FallbackModel: defaultModel,
			Timeout:       cfg.Timeout,
		}, logger),
		openaiCfg: cfg,
	}

	// Organization 支持
	p.SetBuildHeaders(func(req *http.Request, apiKey string) {
		providers.BearerTokenHeaders(req, apiKey)
		if cfg.Organization != "" {
			req.Header.Set("OpenAI-Organization", cfg.Organization)
		}
	})
	return p
}
