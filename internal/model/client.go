package model

import (
	"context"

	"github.com/jaycli/jay/internal/model/contract"
)

type DecisionKind string

const (
	// KindFinalAnswer - the model produced a plain reply; the turn can end.
	KindFinalAnswer DecisionKind = "final_answer"
	// KindToolCalls - the model requested tool invocations. A response
	// carrying any tool call is non-final even if it also carries text.
	KindToolCalls DecisionKind = "tool_calls"
	// KindNeedsInput - the model asked the user a question mid-turn. The
	// loop suspends and returns control to the caller instead of blocking
	// on a terminal read.
	KindNeedsInput DecisionKind = "needs_input"
)

// Decision is the tagged outcome of one model round-trip.
type Decision struct {
	Kind      DecisionKind
	Content   string
	ToolCalls []*contract.ToolCall
}

// TokenStream is a finite, non-restartable sequence of text deltas.
// Recv returns io.EOF when generation completes.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Client talks to an OpenAI-compatible tool-calling endpoint.
type Client interface {
	// Decide sends the conversation plus the tool catalogue and returns the
	// model's next move. Transport failures wrap errors.ErrTransport,
	// unusable responses wrap errors.ErrProtocol.
	Decide(ctx context.Context, messages []contract.Message, tools []contract.ToolDef) (*Decision, error)

	// Stream regenerates a final answer as incremental deltas. Used only
	// once Decide has confirmed no further tool calls are requested.
	Stream(ctx context.Context, messages []contract.Message) (TokenStream, error)

	// Embed returns the embedding vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)
}
