// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/BaSui01/schemaflow/llm"
)

// TestContext 返回带超时的测试上下文
func TestContext(t *testing.T) context.Context {
	return TestContextWithTimeout(t, 30*time.Second)
}

// TestContextWithTimeout 返回带自定义超时的测试上下文
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// CollectUnits 读取通道直到关闭，返回文本单元与第一个错误单元
func CollectUnits(t *testing.T, ch <-chan llm.Unit) ([]string, *llm.Error) {
	t.Helper()
	var texts []string
	timeout := time.After(10 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return texts, nil
			}
			if u.Err != nil {
				return texts, u.Err
			}
			texts = append(texts, u.Text)
		case <-timeout:
			t.Fatal("timed out waiting for units")
			return texts, nil
		}
	}
}

// UnitsFrom 返回一个已关闭的、按顺序包含给定文本的通道
func UnitsFrom(texts ...string) <-chan llm.Unit {
	ch := make(chan llm.Unit, len(texts))
	for _, s := range texts {
		ch <- llm.Unit{Text: s}
	}
	close(ch)
	return ch
}
