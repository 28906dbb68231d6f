// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 是各模型服务商 Adapter 的公共基础层。子包 anthropic（claude）、
gemini、openaicompat、openai 依赖本包完成错误映射、模型选择与单元产出。

# 核心类型

  - BaseProviderConfig：所有 Adapter 共享的基础配置（APIKey、BaseURL、Model、Timeout）
  - ClaudeConfig / GeminiConfig / OpenAIConfig：各服务商配置
  - RetryableAdapter：仅对连接阶段做指数退避重试的 Adapter 包装器

# 核心函数

  - MapHTTPError：将 HTTP 状态码映射为语义化的 llm.Error（含 Retryable 标记）
  - MapTransportError：网络错误与 ctx 取消的映射
  - ReadErrorMessage / CheckResponse：解析三家服务商的错误响应体
  - ChooseModel：按优先级选择模型（请求 > 配置 > 兜底）
  - EmitText：一次性响应文本转为单元通道
*/
package providers
