// MockAdapter 是 llm.Adapter 的测试模拟实现。
//
// 支持固定单元序列、发送失败、流中断与自定义 Send 函数。
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/schemaflow/llm"
)

// MockAdapter 是 llm.Adapter 的模拟实现
type MockAdapter struct {
	mu sync.Mutex

	name      string
	units     []string
	sendErr   error
	streamErr *llm.Error
	sendFunc  func(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error)

	calls []*llm.Request
}

// NewMockAdapter 创建新的 MockAdapter，默认不产生任何单元
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{name: "mock"}
}

// WithName 设置 Adapter 名称
func (m *MockAdapter) WithName(name string) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	return m
}

// WithUnits 设置按顺序返回的文本单元
func (m *MockAdapter) WithUnits(units ...string) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units = append([]string(nil), units...)
	return m
}

// WithResponse 设置单块响应
func (m *MockAdapter) WithResponse(text string) *MockAdapter {
	return m.WithUnits(text)
}

// WithSendError 让 Send 直接返回错误
func (m *MockAdapter) WithSendError(err error) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
	return m
}

// WithStreamError 在已配置单元之后追加一个错误单元
func (m *MockAdapter) WithStreamError(err *llm.Error) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErr = err
	return m
}

// WithSendFunc 设置自定义 Send 函数
func (m *MockAdapter) WithSendFunc(fn func(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error)) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFunc = fn
	return m
}

// Name 返回 Adapter 名称
func (m *MockAdapter) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Send 记录请求并返回配置的单元
func (m *MockAdapter) Send(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	sendFunc, sendErr := m.sendFunc, m.sendErr
	units := append([]string(nil), m.units...)
	streamErr := m.streamErr
	m.mu.Unlock()

	if sendFunc != nil {
		return sendFunc(ctx, req)
	}
	if sendErr != nil {
		return nil, sendErr
	}

	ch := make(chan llm.Unit, len(units)+1)
	for _, u := range units {
		if u == "" {
			continue
		}
		ch <- llm.Unit{Text: u}
	}
	if streamErr != nil {
		ch <- llm.Unit{Err: streamErr}
	}
	close(ch)
	return ch, nil
}

// Calls 返回所有已记录的请求
func (m *MockAdapter) Calls() []*llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*llm.Request(nil), m.calls...)
}

// CallCount 返回 Send 调用次数
func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastRequest 返回最近一次请求
func (m *MockAdapter) LastRequest() *llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}
