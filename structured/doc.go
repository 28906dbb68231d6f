// Copyright 2026 AgentFlow Authors
// Use of this source code is governed by the project license.

/*
# 概述

包 structured 把 LLM 的自由文本输出约束为调用方声明的结构化对象。

核心流程是一个只向前推进的状态机：

	Building → Sending → Assembling → Decoding → Done

任一阶段失败都会直接进入 Done，并以 *Error 返回，Kind 取值为
transport_error、empty_response、malformed_json、unexpected_shape、
missing_field 或 constraint_violation。管线内部不做重试。

# 主要类型

  - Descriptor / Field：有序字段描述，支持 string/integer/boolean/sequence、
    可选字段、默认值与闭区间范围约束
  - Record：校验后的实例，缺省的可选字段取默认值或 Absent
  - Assemble：按到达顺序无分隔地拼接 Unit 通道
  - Decode：解析单个 JSON 对象并校验，报告最早的语法错误位置
  - Pipeline：组合以上步骤，记录日志、指标与 Trace

# 典型用法

	desc := structured.MustDescriptor("MovieReview",
	    structured.NewStringField("title"),
	    structured.NewIntegerField("rating").WithRange(1, 5),
	)
	p, _ := structured.NewPipeline(adapter, structured.WithLogger(logger))
	res, err := p.Run(ctx, prompt, desc, structured.GenerationConfig{MaxTokens: 1000})
	switch structured.KindOf(err) {
	case structured.KindConstraintViolation:
	    // ...
	}

JSON 前后的说明文字不会被自动剥离；需要宽松处理时通过 WithPreFilter 安装
ExtractJSON 之类的预处理函数。
*/
package structured
