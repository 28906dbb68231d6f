package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/schemaflow/llm"
)

// Handler 发送一个请求并返回响应单元通道.
type Handler func(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error)

// Middleware 将处理器包裹并添加额外功能.
type Middleware func(next Handler) Handler

// Chain 表示中间件链.
type Chain struct {
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewChain 创建新的中间件链.
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{middlewares: middlewares}
}

// Use 将中间件添加到链中.
func (c *Chain) Use(m Middleware) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, m)
	return c
}

// UseFront 在链的前部添加中间件.
func (c *Chain) UseFront(m Middleware) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append([]Middleware{m}, c.middlewares...)
	return c
}

// Then 用链中的所有中间件包裹一个处理器.
func (c *Chain) Then(h Handler) Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// 按倒序应用中间件
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}

// Len 返回链中的中间件数量.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.middlewares)
}

// Wrap 返回一个经过中间件链包裹的 llm.Adapter，名称不变.
func (c *Chain) Wrap(adapter llm.Adapter) llm.Adapter {
	return &wrappedAdapter{name: adapter.Name(), send: c.Then(adapter.Send)}
}

type wrappedAdapter struct {
	name string
	send Handler
}

func (w *wrappedAdapter) Name() string { return w.name }

func (w *wrappedAdapter) Send(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
	return w.send(ctx, req)
}

// 内置中间件

// LoggingMiddleware 记录请求模型与建立连接的耗时.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
			start := time.Now()
			units, err := next(ctx, req)
			fields := []zap.Field{
				zap.String("run_id", req.RunID),
				zap.String("model", req.Model),
				zap.Int("messages", len(req.Messages)),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				logger.Warn("llm send failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("llm send started", fields...)
			return units, nil
		}
	}
}

// RateLimitMiddleware 在发送前等待令牌.
// 等待期间 ctx 取消时返回 ErrRateLimited 错误.
func RateLimitMiddleware(limiter *rate.Limiter) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, llm.NewError(llm.ErrRateLimited, "local rate limit wait aborted").WithCause(err)
			}
			return next(ctx, req)
		}
	}
}

// RecoveryMiddleware 捕获发送阶段的 panic 并转为错误.
func RecoveryMiddleware(logger *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llm.Request) (units <-chan llm.Unit, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic in llm send", zap.Any("panic", r), zap.Stack("stack"))
					units = nil
					err = llm.NewError(llm.ErrProviderUnavailable, fmt.Sprintf("panic: %v", r))
				}
			}()
			return next(ctx, req)
		}
	}
}

// RewriteMiddleware 在发送前执行改写器链.
func RewriteMiddleware(chain *RewriterChain) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
			rewritten, err := chain.Execute(ctx, req)
			if err != nil {
				return nil, llm.NewError(llm.ErrInvalidRequest, "request rewrite failed").WithCause(err)
			}
			return next(ctx, rewritten)
		}
	}
}
