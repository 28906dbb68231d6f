// Copyright 2026 AgentFlow Authors
// Use of this source code is governed by the project license.

/*
Package llm 定义 Provider 适配层与核心管线之间的最小契约。

# 核心类型

  - Adapter：发送单次请求并返回有限、只可消费一次的 Unit 通道
  - Request：单次调用的不可变请求描述（提示词、生成参数、JSON 提示）
  - Unit：一段 Provider 输出文本；携带 Err 的 Unit 是通道上的最后一个
  - Error / ErrorCode：传输层错误，带 HTTP 状态与可重试标记

凭据可以通过 WithCredentialOverride 按请求覆盖。
*/
package llm
