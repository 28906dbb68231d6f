// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 gemini 提供 Google Gemini 的 llm.Adapter 实现。直接对接 Gemini REST API
（/v1beta/models/{model}:generateContent），非流式调用，成功时产生至多一个
响应单元。

# 协议要点

  - 使用 x-goog-api-key 请求头认证
  - system 提示通过 systemInstruction 传递，assistant 角色映射为 model
  - temperature / topP / topK / maxOutputTokens / stopSequences 放入 generationConfig
  - 默认声明 responseMimeType: application/json；GeminiConfig.PlainText 可关闭，Request.JSONHint 总会打开
  - promptFeedback.blockReason 映射为 LLM_CONTENT_FILTERED
*/
package gemini
