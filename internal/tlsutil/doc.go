// Package tlsutil 为各模型服务商 Adapter 提供统一的出站 HTTP 客户端
// （TLS 1.2+，仅 AEAD 密码套件，遵循 HTTPS_PROXY 等环境变量）。
package tlsutil
