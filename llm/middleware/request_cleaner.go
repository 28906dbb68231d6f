package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/BaSui01/schemaflow/llm"
)

// ErrEmptyPrompt 请求不含任何非空消息
var ErrEmptyPrompt = errors.New("request has no message content")

// RequestCleaner 请求清理器
// 去掉空白消息和重复/空的 stop 序列，避免上游 API 返回 400。
// 所有消息都为空时返回 ErrEmptyPrompt。
type RequestCleaner struct{}

// NewRequestCleaner 创建请求清理器
func NewRequestCleaner() *RequestCleaner {
	return &RequestCleaner{}
}

// Name 返回改写器名称
func (r *RequestCleaner) Name() string {
	return "request_cleaner"
}

// Rewrite 执行改写，返回副本，不修改调用方的请求
func (r *RequestCleaner) Rewrite(_ context.Context, req *llm.Request) (*llm.Request, error) {
	if req == nil {
		return nil, ErrEmptyPrompt
	}
	out := *req

	out.Messages = make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out.Messages = append(out.Messages, m)
	}
	if len(out.Messages) == 0 {
		return nil, ErrEmptyPrompt
	}

	out.Stop = nil
	seen := make(map[string]struct{}, len(req.Stop))
	for _, s := range req.Stop {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out.Stop = append(out.Stop, s)
	}
	return &out, nil
}
