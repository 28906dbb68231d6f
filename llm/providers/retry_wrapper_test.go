package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/testutil"
	"github.com/BaSui01/schemaflow/testutil/mocks"
)

func fastRetry(n int) RetryConfig {
	return RetryConfig{MaxRetries: n, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestRetryableAdapter_RetriesTransientSendErrors(t *testing.T) {
	calls := 0
	inner := mocks.NewMockAdapter().WithName("claude").WithSendFunc(func(context.Context, *llm.Request) (<-chan llm.Unit, error) {
		calls++
		if calls < 3 {
			return nil, llm.NewError(llm.ErrModelOverloaded, "overloaded").WithRetryable(true)
		}
		return llm.SingleUnit(`{"ok":true}`), nil
	})

	a := NewRetryableAdapter(inner, fastRetry(3), zap.NewNop())
	assert.Equal(t, "claude", a.Name())

	ch, err := a.Send(testutil.TestContext(t), &llm.Request{})
	require.NoError(t, err)
	texts, unitErr := testutil.CollectUnits(t, ch)
	assert.Nil(t, unitErr)
	assert.Equal(t, []string{`{"ok":true}`}, texts)
	assert.Equal(t, 3, calls)
}

func TestRetryableAdapter_StopsOnPermanentError(t *testing.T) {
	inner := mocks.NewMockAdapter().WithSendError(llm.NewError(llm.ErrUnauthorized, "bad key"))
	a := NewRetryableAdapter(inner, fastRetry(3), nil)

	_, err := a.Send(testutil.TestContext(t), &llm.Request{})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrUnauthorized, llmErr.Code)
	assert.Equal(t, 1, inner.CallCount())
}

func TestRetryableAdapter_Exhausted(t *testing.T) {
	inner := mocks.NewMockAdapter().WithSendError(llm.NewError(llm.ErrRateLimited, "slow").WithRetryable(true))
	a := NewRetryableAdapter(inner, fastRetry(2), nil)

	_, err := a.Send(testutil.TestContext(t), &llm.Request{})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrRateLimited, llmErr.Code)
	assert.Equal(t, 3, inner.CallCount())
}

func TestRetryableAdapter_DoesNotReplayStreamErrors(t *testing.T) {
	inner := mocks.NewMockAdapter().WithUnits(`{"a":`).
		WithStreamError(llm.NewError(llm.ErrStreamInterrupted, "eof").WithRetryable(true))
	a := NewRetryableAdapter(inner, fastRetry(3), nil)

	ch, err := a.Send(testutil.TestContext(t), &llm.Request{})
	require.NoError(t, err)
	texts, unitErr := testutil.CollectUnits(t, ch)
	assert.Equal(t, []string{`{"a":`}, texts)
	require.NotNil(t, unitErr)
	assert.Equal(t, 1, inner.CallCount())
}
