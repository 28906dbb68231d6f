// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的结构化生成流水线指标采集。

# 概述

Collector 实现 structured.Recorder，通过 structured.WithRecorder 注入
Pipeline。指标按 namespace 隔离并注册到调用方提供的 Registerer，
命令行通过 promhttp 暴露 /metrics。

# 指标

  - pipeline_runs_total{provider,outcome}：运行次数，outcome 为 success 或错误类别
  - pipeline_run_duration_seconds{provider,outcome}：运行耗时
  - pipeline_response_units{provider}：每次运行收到的响应单元数
  - pipeline_prompt_tokens{provider}：提示词估算 token 数
*/
package metrics
