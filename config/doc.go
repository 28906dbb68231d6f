// Package config 提供 SchemaFlow 的配置加载。
//
// 配置按 默认值 → YAML 文件 → SCHEMAFLOW_* 环境变量 的顺序叠加，
// 覆盖日志、遥测、指标、重试、限流与三个服务商 Adapter。
// API Key 不要求写入配置文件，由 ResolveAPIKey 从环境变量解析。
package config
