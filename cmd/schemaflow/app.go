package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/schemaflow/config"
	"github.com/BaSui01/schemaflow/internal/demo"
	"github.com/BaSui01/schemaflow/internal/metrics"
	"github.com/BaSui01/schemaflow/internal/server"
	"github.com/BaSui01/schemaflow/internal/telemetry"
	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/llm/middleware"
	"github.com/BaSui01/schemaflow/llm/providers"
	claude "github.com/BaSui01/schemaflow/llm/providers/anthropic"
	"github.com/BaSui01/schemaflow/llm/providers/gemini"
	"github.com/BaSui01/schemaflow/llm/providers/openai"
	"github.com/BaSui01/schemaflow/llm/tokenizer"
	"github.com/BaSui01/schemaflow/structured"
)

// options 是所有运行类子命令共享的命令行参数
type options struct {
	configPath  string
	metricsAddr string
	retries     int
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to config file")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address")
	fs.IntVar(&o.retries, "retries", -1, "Connection retries per request (-1 keeps config)")
}

// app 持有一次命令执行期间共享的依赖
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	recorder  structured.Recorder
	telemetry *telemetry.Providers
	metricsSv *server.Manager
	limiter   *rate.Limiter
}

// newApp 加载配置并初始化日志、指标与遥测
func newApp(ctx context.Context, opts options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.retries >= 0 {
		cfg.Retry.MaxRetries = opts.retries
	}

	a := &app{
		cfg:      cfg,
		logger:   initLogger(cfg.Log),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(cfg.Metrics.Namespace, a.registry, a.logger)

	a.telemetry, err = telemetry.Init(ctx, cfg.Telemetry, a.logger)
	if err != nil {
		a.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	otelRecorder, err := telemetry.NewRecorder(a.telemetry.MeterProvider())
	if err != nil {
		a.logger.Warn("failed to create otel recorder", zap.Error(err))
		a.recorder = collector
	} else {
		a.recorder = metrics.Join(collector, otelRecorder)
	}

	if cfg.RateLimit.RPS > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	if cfg.Metrics.Addr != "" {
		a.metricsSv = server.NewManager(server.MetricsHandler(a.registry), server.DefaultConfig(cfg.Metrics.Addr), a.logger)
		if err := a.metricsSv.Start(); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.metricsSv != nil {
		if err := a.metricsSv.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// newAdapter 构造 provider 对应的 Adapter：服务商实现 → 中间件链 → 连接重试
func (a *app) newAdapter(provider string) (llm.Adapter, error) {
	var base llm.Adapter
	switch provider {
	case demo.ProviderClaude:
		pc := a.cfg.Providers.Claude
		key, err := pc.ResolveKey(config.ClaudeKeyEnv...)
		if err != nil {
			return nil, err
		}
		base = claude.NewClaudeProvider(providers.ClaudeConfig{
			BaseProviderConfig: baseConfig(pc, key),
			MaxTokens:          pc.MaxTokens,
		}, a.logger)
	case demo.ProviderGemini:
		pc := a.cfg.Providers.Gemini
		key, err := pc.ResolveKey(config.GeminiKeyEnv...)
		if err != nil {
			return nil, err
		}
		base = gemini.NewGeminiProvider(providers.GeminiConfig{BaseProviderConfig: baseConfig(pc, key)}, a.logger)
	case demo.ProviderOpenAI:
		pc := a.cfg.Providers.OpenAI
		key, err := pc.ResolveKey(config.OpenAIKeyEnv...)
		if err != nil {
			return nil, err
		}
		base = openai.NewOpenAIProvider(providers.OpenAIConfig{
			BaseProviderConfig: baseConfig(pc, key),
			Organization:       pc.Organization,
		}, a.logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	chain := middleware.NewChain(
		middleware.RecoveryMiddleware(a.logger),
		middleware.LoggingMiddleware(a.logger),
	)
	if a.limiter != nil {
		chain.Use(middleware.RateLimitMiddleware(a.limiter))
	}

	return providers.NewRetryableAdapter(chain.Wrap(base), providers.RetryConfig{
		MaxRetries:    a.cfg.Retry.MaxRetries,
		InitialDelay:  a.cfg.Retry.InitialDelay,
		MaxDelay:      a.cfg.Retry.MaxDelay,
		BackoffFactor: a.cfg.Retry.BackoffFactor,
	}, a.logger), nil
}

// newPipeline 为示例构造流水线；模型决定使用的分词器
func (a *app) newPipeline(d demo.Demo, adapter llm.Adapter) (*structured.Pipeline, error) {
	return structured.NewPipeline(adapter,
		structured.WithLogger(a.logger),
		structured.WithRecorder(a.recorder),
		structured.WithTracerProvider(a.telemetry.TracerProvider()),
		structured.WithTokenCounter(tokenizer.ForModel(a.modelFor(d.Provider))),
	)
}

func (a *app) modelFor(provider string) string {
	switch provider {
	case demo.ProviderClaude:
		return a.cfg.Providers.Claude.Model
	case demo.ProviderGemini:
		return a.cfg.Providers.Gemini.Model
	default:
		return a.cfg.Providers.OpenAI.Model
	}
}

func baseConfig(pc config.ProviderConfig, key string) providers.BaseProviderConfig {
	return providers.BaseProviderConfig{
		APIKey:  key,
		BaseURL: pc.BaseURL,
		Model:   pc.Model,
		Timeout: pc.Timeout,
	}
}
