// =============================================================================
// 📦 SchemaFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Metrics:   DefaultMetricsConfig(),
		Retry:     DefaultRetryConfig(),
		RateLimit: DefaultRateLimitConfig(),
		Providers: DefaultProvidersConfig(),
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "schemaflow",
		SampleRate:   0.1,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Namespace: "schemaflow"}
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  1 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// DefaultRateLimitConfig 返回默认限流配置（不限流）
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RPS: 0, Burst: 1}
}

// DefaultProvidersConfig 返回各服务商默认配置
func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		Claude: ProviderConfig{
			BaseURL:   "https://api.anthropic.com",
			Model:     "claude-3-opus-20240229",
			Timeout:   60 * time.Second,
			MaxTokens: 1000,
		},
		Gemini: ProviderConfig{
			BaseURL:   "https://generativelanguage.googleapis.com",
			Model:     "gemini-2.0-flash-exp",
			Timeout:   60 * time.Second,
			MaxTokens: 8192,
		},
		OpenAI: ProviderConfig{
			BaseURL: "https://api.openai.com",
			Model:   "gpt-4",
			Timeout: 0,
		},
	}
}
