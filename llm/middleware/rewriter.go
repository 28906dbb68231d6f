package middleware

import (
	"context"
	"fmt"

	"github.com/BaSui01/schemaflow/llm"
)

// RequestRewriter 在请求离开 Adapter 之前改写它。
// 实现应返回副本，不修改调用方持有的请求。
type RequestRewriter interface {
	Rewrite(ctx context.Context, req *llm.Request) (*llm.Request, error)
	Name() string
}

// RewriterFunc 把普通函数适配为 RequestRewriter
type RewriterFunc struct {
	Label string
	Fn    func(ctx context.Context, req *llm.Request) (*llm.Request, error)
}

func (f RewriterFunc) Name() string { return f.Label }

func (f RewriterFunc) Rewrite(ctx context.Context, req *llm.Request) (*llm.Request, error) {
	return f.Fn(ctx, req)
}

// RewriterChain 依次应用若干改写器，nil 链原样返回请求。
type RewriterChain struct {
	steps []RequestRewriter
}

func NewRewriterChain(rewriters ...RequestRewriter) *RewriterChain {
	return &RewriterChain{steps: rewriters}
}

// Execute 任一步失败即停止，错误中带上改写器名称。
func (c *RewriterChain) Execute(ctx context.Context, req *llm.Request) (*llm.Request, error) {
	if c == nil {
		return req, nil
	}
	cur := req
	for _, step := range c.steps {
		next, err := step.Rewrite(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("rewriter [%s] failed: %w", step.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Append 在链尾追加改写器
func (c *RewriterChain) Append(r RequestRewriter) {
	c.steps = append(c.steps, r)
}

// Len 返回改写器数量
func (c *RewriterChain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.steps)
}

// DefaultMaxTokens 在请求未指定 MaxTokens 时填入 n。
// Claude 的 messages 接口要求 max_tokens 必填。
func DefaultMaxTokens(n int) RequestRewriter {
	return RewriterFunc{
		Label: "default_max_tokens",
		Fn: func(_ context.Context, req *llm.Request) (*llm.Request, error) {
			if req.MaxTokens > 0 || n <= 0 {
				return req, nil
			}
			out := *req
			out.MaxTokens = n
			return &out, nil
		},
	}
}
