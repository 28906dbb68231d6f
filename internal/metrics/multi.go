package metrics

import (
	"time"

	"github.com/BaSui01/schemaflow/structured"
)

// Join 返回一个把每次记录转发给 recorders 的 structured.Recorder，nil 项被忽略。
func Join(recorders ...structured.Recorder) structured.Recorder {
	out := make(multiRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multiRecorder []structured.Recorder

func (m multiRecorder) RecordRun(provider string, kind structured.ErrorKind, d time.Duration, units int) {
	for _, r := range m {
		r.RecordRun(provider, kind, d, units)
	}
}

func (m multiRecorder) RecordPromptTokens(provider string, tokens int) {
	for _, r := range m {
		r.RecordPromptTokens(provider, tokens)
	}
}
