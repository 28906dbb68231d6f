// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 schemaflow 测试的共享工具。

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext
  - 单元辅助: CollectUnits 读取 Adapter 输出，UnitsFrom 构造固定通道

子包 testutil/mocks 提供 MockAdapter，支持 Builder 模式与错误注入。
*/
package testutil
