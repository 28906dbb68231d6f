package structured

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/llm"
)

// State is a pipeline stage. A run moves forward through the stages and
// jumps to StateDone on the first failure.
type State int

const (
	StateBuilding State = iota
	StateSending
	StateAssembling
	StateDecoding
	StateDone
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateSending:
		return "sending"
	case StateAssembling:
		return "assembling"
	case StateDecoding:
		return "decoding"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// GenerationConfig holds the adapter-specific generation parameters of one run.
type GenerationConfig struct {
	Model       string
	System      string
	MaxTokens   int
	Temperature float32
	TopP        float32
	TopK        int
	Stop        []string
	JSONHint    bool
}

// Recorder receives per-run measurements. internal/metrics provides a
// Prometheus implementation.
type Recorder interface {
	RecordRun(provider string, kind ErrorKind, duration time.Duration, units int)
	RecordPromptTokens(provider string, tokens int)
}

// TokenCounter estimates prompt size during the building stage.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// Result is the successful outcome of a run.
type Result struct {
	RunID    string
	Provider string
	Record   *Record
	Raw      string
	Units    int
	Duration time.Duration
}

// ErrNilDescriptor is returned when Run is called without a descriptor.
// It reports a caller bug, not a run outcome, so it is not a *Error and
// KindOf returns "" for it. Nothing is sent and no metrics are recorded.
var ErrNilDescriptor = errors.New("structured: nil descriptor")

// Pipeline turns a prompt and a descriptor into a validated Record using one
// adapter. It holds no per-run state, so one instance may serve concurrent
// runs. It never retries; wrap Run with llm/retry when a policy is wanted.
type Pipeline struct {
	adapter     llm.Adapter
	logger      *zap.Logger
	recorder    Recorder
	tracer      trace.Tracer
	tokens      TokenCounter
	preFilter   PreFilter
	instruction bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithTracerProvider sets the tracer provider used for run spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		if tp != nil {
			p.tracer = tp.Tracer("github.com/BaSui01/schemaflow/structured")
		}
	}
}

// WithTokenCounter enables prompt token accounting.
func WithTokenCounter(c TokenCounter) Option {
	return func(p *Pipeline) { p.tokens = c }
}

// WithPreFilter installs a transform between assembling and decoding.
func WithPreFilter(f PreFilter) Option {
	return func(p *Pipeline) { p.preFilter = f }
}

// WithoutInstruction stops the pipeline from appending the schema instruction
// to the system prompt.
func WithoutInstruction() Option {
	return func(p *Pipeline) { p.instruction = false }
}

// NewPipeline creates a pipeline bound to adapter.
func NewPipeline(adapter llm.Adapter, opts ...Option) (*Pipeline, error) {
	if adapter == nil {
		return nil, fmt.Errorf("adapter cannot be nil")
	}
	p := &Pipeline{
		adapter:     adapter,
		logger:      zap.NewNop(),
		recorder:    nopRecorder{},
		tracer:      noop.NewTracerProvider().Tracer(""),
		instruction: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("component", "pipeline"), zap.String("provider", adapter.Name()))
	return p, nil
}

// Adapter returns the adapter the pipeline sends to.
func (p *Pipeline) Adapter() llm.Adapter { return p.adapter }

// run carries the bookkeeping of one invocation.
type run struct {
	id     string
	state  State
	span   trace.Span
	logger *zap.Logger
}

func (r *run) enter(s State) {
	r.state = s
	r.span.AddEvent(s.String())
	r.logger.Debug("pipeline state", zap.Stringer("state", s))
}

// Run executes Building → Sending → Assembling → Decoding → Done. Every
// failure is returned as a *Error; the returned Result is nil in that case.
func (p *Pipeline) Run(ctx context.Context, prompt string, desc *Descriptor, gen GenerationConfig) (*Result, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}

	start := time.Now()
	r := &run{id: uuid.NewString()}
	ctx, r.span = p.tracer.Start(ctx, "structured.Run", trace.WithAttributes(
		attribute.String("schemaflow.run_id", r.id),
		attribute.String("schemaflow.provider", p.adapter.Name()),
		attribute.String("schemaflow.descriptor", desc.Name()),
	))
	defer r.span.End()
	r.logger = p.logger.With(zap.String("run_id", r.id), zap.String("descriptor", desc.Name()))

	res, err := p.run(ctx, r, prompt, desc, gen)
	duration := time.Since(start)
	r.enter(StateDone)

	if err != nil {
		kind := KindOf(err)
		units := 0
		if res != nil {
			units = res.Units
		}
		p.recorder.RecordRun(p.adapter.Name(), kind, duration, units)
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, string(kind))
		r.logger.Warn("pipeline failed",
			zap.String("kind", string(kind)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	res.Duration = duration
	p.recorder.RecordRun(p.adapter.Name(), "", duration, res.Units)
	r.span.SetAttributes(attribute.Int("schemaflow.units", res.Units))
	r.span.SetStatus(codes.Ok, "")
	r.logger.Info("pipeline succeeded",
		zap.Int("units", res.Units),
		zap.Duration("duration", duration),
	)
	return res, nil
}

// run returns a partially filled Result alongside errors so the caller can
// report how many units arrived before the failure.
func (p *Pipeline) run(ctx context.Context, r *run, prompt string, desc *Descriptor, gen GenerationConfig) (*Result, error) {
	r.enter(StateBuilding)
	req := p.buildRequest(r.id, prompt, desc, gen)
	p.countPromptTokens(r, req)

	r.enter(StateSending)
	units, err := p.adapter.Send(ctx, req)
	if err != nil {
		return nil, classifyTransport(err)
	}

	r.enter(StateAssembling)
	cand, err := Assemble(ctx, units)
	res := &Result{RunID: r.id, Provider: p.adapter.Name(), Units: cand.Units}
	if err != nil {
		return res, err
	}
	if cand.Units == 0 {
		return res, &Error{Kind: KindEmptyResponse, Detail: "adapter produced no response units"}
	}

	r.enter(StateDecoding)
	text := cand.Text
	if p.preFilter != nil {
		text = p.preFilter(text)
	}
	res.Raw = text
	rec, err := Decode(text, desc)
	if err != nil {
		return res, err
	}
	res.Record = rec
	return res, nil
}

func (p *Pipeline) buildRequest(runID, prompt string, desc *Descriptor, gen GenerationConfig) *llm.Request {
	system := gen.System
	if p.instruction {
		if system != "" {
			system += "\n\n"
		}
		system += Instruction(desc)
	}
	var stop []string
	if len(gen.Stop) > 0 {
		stop = append(stop, gen.Stop...)
	}
	return &llm.Request{
		RunID:       runID,
		Model:       gen.Model,
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   gen.MaxTokens,
		Temperature: gen.Temperature,
		TopP:        gen.TopP,
		TopK:        gen.TopK,
		Stop:        stop,
		JSONHint:    gen.JSONHint,
	}
}

func (p *Pipeline) countPromptTokens(r *run, req *llm.Request) {
	if p.tokens == nil {
		return
	}
	n, err := p.tokens.CountTokens(req.System + "\n" + req.Prompt())
	if err != nil {
		r.logger.Debug("prompt token count unavailable", zap.Error(err))
		return
	}
	p.recorder.RecordPromptTokens(p.adapter.Name(), n)
	r.span.SetAttributes(attribute.Int("schemaflow.prompt_tokens", n))
}

// classifyTransport wraps whatever Send returned as a TransportError.
func classifyTransport(err error) *Error {
	if e, ok := AsError(err); ok && e.Kind == KindTransport {
		return e
	}
	return transportError(err)
}

// RunInto runs the pipeline and copies the record into a new T.
func RunInto[T any](ctx context.Context, p *Pipeline, prompt string, desc *Descriptor, gen GenerationConfig) (*T, error) {
	res, err := p.Run(ctx, prompt, desc, gen)
	if err != nil {
		return nil, err
	}
	var out T
	if err := res.Record.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordRun(string, ErrorKind, time.Duration, int) {}
func (nopRecorder) RecordPromptTokens(string, int)                   {}
