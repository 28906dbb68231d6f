package openaicompat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/llm/providers"
)

// streamChunk is one chat.completion.chunk event.
type streamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int    `json:"index"`
		FinishReason string `json:"finish_reason"`
		Delta        struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// StreamSSE parses an SSE stream from an OpenAI-compatible API and returns a
// channel of units, one per non-empty content delta, in arrival order.
//
// The stream is complete on "data: [DONE]", or on EOF after a chunk carrying a
// finish_reason. EOF before either, a read error, a malformed event or an
// in-band error event ends the channel with an error unit. When ctx is done
// the channel is closed without further units.
func StreamSSE(ctx context.Context, body io.ReadCloser, providerName string) <-chan llm.Unit {
	ch := make(chan llm.Unit)
	go func() {
		defer body.Close()
		defer close(ch)

		emit := func(u llm.Unit) bool {
			select {
			case <-ctx.Done():
				return false
			case ch <- u:
				return true
			}
		}
		fail := func(e *llm.Error) {
			emit(llm.Unit{Err: e.WithProvider(providerName)})
		}

		finished := false
		reader := bufio.NewReader(body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				switch {
				case ctx.Err() != nil:
				case errors.Is(err, io.EOF) && finished:
				case errors.Is(err, io.EOF):
					fail(llm.NewError(llm.ErrStreamInterrupted, "stream ended before completion signal").
						WithRetryable(true))
				default:
					fail(llm.NewError(llm.ErrUpstreamError, "stream read failed").
						WithCause(err).WithHTTPStatus(http.StatusBadGateway).WithRetryable(true))
				}
				return
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				fail(llm.NewError(llm.ErrUpstreamError, "malformed stream event").
					WithCause(err).WithHTTPStatus(http.StatusBadGateway).WithRetryable(true))
				return
			}
			if chunk.Error != nil {
				fail(providers.MapHTTPError(http.StatusBadGateway, chunk.Error.Message, providerName))
				return
			}

			for _, choice := range chunk.Choices {
				if choice.FinishReason != "" {
					finished = true
				}
				if choice.Index != 0 || choice.Delta.Content == "" {
					continue
				}
				if !emit(llm.Unit{Text: choice.Delta.Content}) {
					return
				}
			}
		}
	}()
	return ch
}
