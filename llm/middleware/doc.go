// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 middleware 提供 Adapter 发送阶段的中间件链机制，支持在请求发送到
上游模型服务之前插入可组合的横切逻辑。

# 核心接口

  - Handler：func(ctx, *llm.Request) (<-chan llm.Unit, error)
  - Middleware：func(Handler) Handler
  - Chain：中间件链，支持 Use / UseFront / Then / Wrap
  - RequestRewriter / RewriterChain：请求改写器链

# 内置能力

  - LoggingMiddleware：zap 记录模型、消息数与建连耗时
  - RateLimitMiddleware：基于 golang.org/x/time/rate 的阻塞限流
  - RecoveryMiddleware：捕获 panic 并转为 llm.Error
  - RewriteMiddleware + RequestCleaner：清理空消息与重复 stop 序列

中间件只作用于 Send 调用本身，不读取也不改写响应单元。
*/
package middleware
