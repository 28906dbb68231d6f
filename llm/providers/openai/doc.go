// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 openai 提供 OpenAI 的流式 llm.Adapter 实现，嵌入 openaicompat.Provider。
默认地址 https://api.openai.com，默认模型 gpt-4；每个非空 content 增量
产生一个响应单元，收到 [DONE] 后关闭通道。

# 支持能力

  - Chat Completions 流式输出（SSE，委托 openaicompat）
  - JSONHint 映射为 response_format: json_object
  - Organization header 支持
  - CredentialOverride 运行时凭证覆盖
*/
package openai
