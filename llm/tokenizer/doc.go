// Package tokenizer 为提示词提供 Token 计数：OpenAI 系列模型使用 tiktoken
// 精确计数，其他模型回退到区分 CJK 的字符估算器。所有实现均满足
// structured.TokenCounter。
package tokenizer
