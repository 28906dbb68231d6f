package structured

import (
	"context"
	"strings"

	"github.com/BaSui01/schemaflow/llm"
)

// Candidate is the concatenated provider output for one request.
type Candidate struct {
	Text  string
	Units int
}

// Assemble drains units to completion and concatenates their text in arrival
// order with nothing inserted between them. The channel is consumed exactly
// once.
//
// A unit carrying an error, or cancellation of ctx before the channel is
// closed, yields a TransportError. Zero units yields an empty Candidate and
// no error; Decode reports that as EmptyResponse. A nil channel counts as
// zero units.
func Assemble(ctx context.Context, units <-chan llm.Unit) (Candidate, error) {
	if units == nil {
		return Candidate{}, nil
	}
	var sb strings.Builder
	n := 0
	for {
		select {
		case <-ctx.Done():
			return Candidate{Text: sb.String(), Units: n}, transportError(
				llm.NewError(llm.ErrUpstreamTimeout, "response interrupted by context").WithCause(ctx.Err()))
		case u, ok := <-units:
			if !ok {
				// Producers also watch ctx and may close early on cancellation.
				if err := ctx.Err(); err != nil {
					return Candidate{Text: sb.String(), Units: n}, transportError(
						llm.NewError(llm.ErrUpstreamTimeout, "response interrupted by context").WithCause(err))
				}
				return Candidate{Text: sb.String(), Units: n}, nil
			}
			if u.Err != nil {
				return Candidate{Text: sb.String(), Units: n}, transportError(u.Err)
			}
			sb.WriteString(u.Text)
			n++
		}
	}
}

func transportError(cause error) *Error {
	return &Error{Kind: KindTransport, Detail: cause.Error(), Cause: cause}
}
