package structured

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/testutil"
)

func TestAssemble_NoSeparators(t *testing.T) {
	cand, err := Assemble(context.Background(), testutil.UnitsFrom(`{"a":1`, `,"b":2}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, cand.Text)
	assert.Equal(t, 2, cand.Units)
}

func TestAssemble_ZeroUnits(t *testing.T) {
	cand, err := Assemble(context.Background(), testutil.UnitsFrom())
	require.NoError(t, err)
	assert.Equal(t, "", cand.Text)
	assert.Zero(t, cand.Units)
}

func TestAssemble_ErrorUnitIsTransportError(t *testing.T) {
	ch := make(chan llm.Unit, 3)
	ch <- llm.Unit{Text: `{"a":`}
	ch <- llm.Unit{Err: llm.NewError(llm.ErrStreamInterrupted, "connection reset").WithProvider("openai")}
	ch <- llm.Unit{Text: `1}`}
	close(ch)

	cand, err := Assemble(context.Background(), ch)
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, `{"a":`, cand.Text, "nothing after the error unit is consumed")

	var lerr *llm.Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, llm.ErrStreamInterrupted, lerr.Code)
	assert.Equal(t, "openai", lerr.Provider)
}

func TestAssemble_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan llm.Unit)
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Assemble(ctx, ch)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAssemble_ClosedAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := make(chan llm.Unit)
	close(ch)

	_, err := Assemble(ctx, ch)
	assert.Equal(t, KindTransport, KindOf(err))
}

// Property: 任意切分方式拼接后与原文逐字节一致。
func TestProperty_Assemble_PreservesOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")
		cuts := rapid.SliceOfN(rapid.IntRange(0, len(text)), 0, 8).Draw(rt, "cuts")

		var chunks []string
		prev := 0
		slices.Sort(cuts)
		for _, c := range cuts {
			if c > prev {
				chunks = append(chunks, text[prev:c])
				prev = c
			}
		}
		if prev < len(text) {
			chunks = append(chunks, text[prev:])
		}

		cand, err := Assemble(context.Background(), testutil.UnitsFrom(chunks...))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if cand.Text != text {
			rt.Fatalf("assembled %q, want %q", cand.Text, text)
		}
		if cand.Units != len(chunks) {
			rt.Fatalf("units = %d, want %d", cand.Units, len(chunks))
		}
		if strings.Join(chunks, "") != cand.Text {
			rt.Fatalf("join mismatch")
		}
	})
}

func TestAssemble_NilChannel(t *testing.T) {
	cand, err := Assemble(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Candidate{}, cand)
}
