package llm

import (
	"context"
	"fmt"
)

// 统一的传输层错误码，用于对齐 HTTP 状态与可重试性。
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "LLM_INVALID_REQUEST"      // 参数/格式错误
	ErrUnauthorized        ErrorCode = "LLM_UNAUTHORIZED"         // 未授权或密钥失效
	ErrForbidden           ErrorCode = "LLM_FORBIDDEN"            // 权限或内容策略拒绝
	ErrRateLimited         ErrorCode = "LLM_RATE_LIMITED"         // 上游或本地限流
	ErrQuotaExceeded       ErrorCode = "LLM_QUOTA_EXCEEDED"       // 额度/配额用尽
	ErrContentFiltered     ErrorCode = "LLM_CONTENT_FILTERED"     // 命中内容安全
	ErrModelOverloaded     ErrorCode = "LLM_MODEL_OVERLOADED"     // 模型过载
	ErrUpstreamTimeout     ErrorCode = "LLM_UPSTREAM_TIMEOUT"     // 上游超时
	ErrUpstreamError       ErrorCode = "LLM_UPSTREAM_ERROR"       // 上游 5xx/网络错误
	ErrStreamInterrupted   ErrorCode = "LLM_STREAM_INTERRUPTED"   // 流在完成信号前中断
	ErrProviderUnavailable ErrorCode = "LLM_PROVIDER_UNAVAILABLE" // Provider 不可用
)

// Error is a transport-level failure reported by an adapter.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError creates an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause 设置底层原因。
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus 设置 HTTP 状态码。
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable 标记是否可重试。
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider 设置 Provider 名称。
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
}

// Request carries one single-shot generation call. It is built once by the
// pipeline and must not be mutated by adapters.
type Request struct {
	RunID       string    `json:"run_id,omitempty"`
	Model       string    `json:"model,omitempty"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
	TopP        float32   `json:"top_p,omitempty"`
	TopK        int       `json:"top_k,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
	// JSONHint asks the provider to constrain output to JSON. Adapters that
	// have no such switch ignore it.
	JSONHint bool `json:"json_hint,omitempty"`
}

// Prompt 返回所有 user 消息的拼接内容。
func (r *Request) Prompt() string {
	var out string
	for _, m := range r.Messages {
		if m.Role == RoleUser {
			out += m.Content
		}
	}
	return out
}

// Unit is one chunk of provider output text. A unit with a non-nil Err is
// the last one on its channel.
type Unit struct {
	Text string `json:"text,omitempty"`
	Err  *Error `json:"error,omitempty"`
}

// Adapter hides one provider response shape behind a single contract.
//
// Send returns a finite channel that the caller drains exactly once. The
// adapter closes the channel when the transport signals completion. An error
// returned from Send means no unit was produced at all.
type Adapter interface {
	Name() string
	Send(ctx context.Context, req *Request) (<-chan Unit, error)
}

// SingleUnit returns a closed channel holding text as its only unit. Empty
// text yields a closed channel with no units.
func SingleUnit(text string) <-chan Unit {
	ch := make(chan Unit, 1)
	if text != "" {
		ch <- Unit{Text: text}
	}
	close(ch)
	return ch
}
