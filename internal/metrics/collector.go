// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/structured"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// OutcomeSuccess 是成功运行的 outcome 标签值，失败运行使用错误类别名。
const OutcomeSuccess = "success"

// Collector 记录结构化生成流水线的运行指标，实现 structured.Recorder。
type Collector struct {
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runUnits     *prometheus.HistogramVec
	promptTokens *prometheus.HistogramVec

	logger *zap.Logger
}

var _ structured.Recorder = (*Collector)(nil)

// NewCollector 在 reg 上注册全部指标。reg 为 nil 时使用默认注册表。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	return &Collector{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of structured generation runs",
			},
			[]string{"provider", "outcome"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_run_duration_seconds",
				Help:      "Structured generation run duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "outcome"},
		),
		runUnits: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_response_units",
				Help:      "Number of response units received per run",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
			},
			[]string{"provider"},
		),
		promptTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_prompt_tokens",
				Help:      "Estimated prompt tokens per run",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 7),
			},
			[]string{"provider"},
		),
		logger: logger.With(zap.String("component", "metrics")),
	}
}

// RecordRun 记录一次运行。kind 为空表示成功。
func (c *Collector) RecordRun(provider string, kind structured.ErrorKind, duration time.Duration, units int) {
	outcome := OutcomeSuccess
	if kind != "" {
		outcome = string(kind)
	}
	c.runsTotal.WithLabelValues(provider, outcome).Inc()
	c.runDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
	c.runUnits.WithLabelValues(provider).Observe(float64(units))

	c.logger.Debug("run recorded",
		zap.String("provider", provider),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
		zap.Int("units", units),
	)
}

// RecordPromptTokens 记录提示词的估算 token 数。
func (c *Collector) RecordPromptTokens(provider string, tokens int) {
	c.promptTokens.WithLabelValues(provider).Observe(float64(tokens))
}
