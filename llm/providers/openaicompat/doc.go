// Package openaicompat provides a shared streaming adapter for providers that
// speak the OpenAI Chat Completions protocol.
//
// Requests are always sent with "stream": true and the SSE response is
// turned into llm.Unit values by StreamSSE. A provider embeds Provider and
// only overrides what differs:
//
//   - Provider name and default model
//   - Base URL
//   - Custom headers (if any)
//   - Request hooks for provider-specific fields
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    ProviderName:  "openai",
//	    APIKey:        cfg.APIKey,
//	    BaseURL:       "https://api.openai.com",
//	    FallbackModel: "gpt-4",
//	}, logger)
package openaicompat
