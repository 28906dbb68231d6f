// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 SchemaFlow 命令行程序入口。

# 概述

cmd/schemaflow 运行三个内置示例（review、city、summary），把提示词
经服务商 Adapter 发送出去，组装响应并按 Descriptor 校验，最终输出
按声明顺序排列的 JSON 记录。失败时输出错误类别并以状态码 1 退出。

# 组装顺序

  - config.Load：默认值 → YAML → SCHEMAFLOW_* 环境变量，随后校验
  - initLogger：按 LogConfig 构建 zap logger
  - metrics.Collector + telemetry.Recorder：经 metrics.Join 注入 Pipeline
  - server.Manager：--metrics-addr 非空时暴露 /metrics
  - Adapter：服务商实现 → Recovery/Logging/RateLimit 中间件 → RetryableAdapter
  - structured.Pipeline：每次运行一个 span，token 数由 tokenizer.ForModel 估算

# 子命令

  - review / city / summary [input]：运行单个示例
  - all：用 errgroup 并发运行全部示例，单个失败不影响其他示例
  - schema <demo>：打印示例的 JSON Schema
  - version / help
*/
package main
