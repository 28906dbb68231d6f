// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 管理命令行进程内暴露 Prometheus 指标的 HTTP 服务器。

# 核心类型

  - Manager：封装 net/http.Server 与 net.Listener，提供非阻塞 Start、
    幂等 Shutdown、异步错误通道 Errors 与实际监听地址 Addr。
  - Config：监听地址、请求头读取超时与优雅关闭超时。

# 主要能力

  - MetricsHandler：基于 promhttp.HandlerFor 暴露 /metrics，附带 /healthz。
*/
package server
