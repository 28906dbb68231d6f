// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 claude 提供 Anthropic Claude 的 llm.Adapter 实现。请求映射到
Anthropic Messages API（/v1/messages），以非流式方式调用，成功时
产生恰好一个响应单元（所有 text 块的拼接）。

# 协议要点

  - 认证使用 x-api-key 请求头，并携带 anthropic-version: 2023-06-01
  - system 提示单独传递到 system 字段
  - max_tokens 必填：请求 > 配置 > 默认 1000
  - 529 过载映射为可重试的 LLM_MODEL_OVERLOADED

# 支持能力

  - CredentialOverride 运行时凭证覆盖
  - RequestCleaner 改写器清理空消息与重复 stop 序列
*/
package claude
