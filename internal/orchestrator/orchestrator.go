// Package orchestrator drives one user turn to completion: it alternates
// between asking the model for a decision and executing the tool calls the
// model requested, until the model produces a plain answer, asks the user a
// question, or the turn budget runs out.
package orchestrator

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jaycli/jay/internal/conversation"
	jayErrors "github.com/jaycli/jay/internal/errors"
	"github.com/jaycli/jay/internal/logger"
	"github.com/jaycli/jay/internal/model"
	"github.com/jaycli/jay/internal/tool"

	"github.com/oklog/ulid/v2"
)

type TurnStatus string

const (
	// StatusDone - the model produced a final answer.
	StatusDone TurnStatus = "done"
	// StatusFailed - transport failure, budget exhaustion or interrupt.
	// The conversation keeps every fully committed tool round.
	StatusFailed TurnStatus = "failed"
	// StatusNeedsInput - the model asked the user a question mid-turn. The
	// caller shows Question, reads a reply and starts the next turn with it.
	StatusNeedsInput TurnStatus = "needs_input"
)

type TurnResult struct {
	Status   TurnStatus
	Answer   string
	Question string
	Rounds   int
	Err      error
}

// StreamSink receives final-answer deltas as they arrive. Nil means the
// caller wants the answer in one piece.
type StreamSink interface {
	OnDelta(delta string)
}

type Engine struct {
	client     model.Client
	executor   *tool.Executor
	registry   *tool.Registry
	turnBudget int
	sink       StreamSink
}

type Options struct {
	Client     model.Client
	Executor   *tool.Executor
	Registry   *tool.Registry
	TurnBudget int
	Sink       StreamSink
}

func NewEngine(opts Options) *Engine {
	budget := opts.TurnBudget
	if budget <= 0 {
		budget = 8
	}
	return &Engine{
		client:     opts.Client,
		executor:   opts.Executor,
		registry:   opts.Registry,
		turnBudget: budget,
		sink:       opts.Sink,
	}
}

// RunTurn appends the user input and loops model decisions and tool rounds
// until a terminal state. It mutates conv exclusively for the duration of
// the call.
func (e *Engine) RunTurn(ctx context.Context, conv *conversation.Conversation, userInput string) TurnResult {
	turnID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	ctx = logger.WithTurnID(ctx, turnID)
	started := time.Now()

	conv.MarkTurn()
	conv.AddUser(userInput)

	tools := append(e.registry.Definitions(), model.AskUserToolDef())

	for round := 1; round <= e.turnBudget; round++ {
		decision, err := e.client.Decide(ctx, conv.Messages(), tools)
		if err != nil {
			if ctx.Err() != nil {
				err = fmt.Errorf("turn abandoned: %w", jayErrors.ErrInterrupted)
			}
			slog.Error("model decision failed",
				"turn", turnID,
				"round", round,
				"category", jayErrors.Category(err),
				"error", err,
			)
			return TurnResult{Status: StatusFailed, Rounds: round, Err: err}
		}

		switch decision.Kind {
		case model.KindToolCalls:
			conv.AddAssistant(decision.Content, decision.ToolCalls)
			results := e.executor.ExecuteAll(ctx, decision.ToolCalls)
			for _, result := range results {
				conv.AddToolResult(result)
			}
			if ctx.Err() != nil {
				return TurnResult{
					Status: StatusFailed,
					Rounds: round,
					Err:    fmt.Errorf("turn abandoned: %w", jayErrors.ErrInterrupted),
				}
			}

		case model.KindNeedsInput:
			conv.AddAssistant(decision.Content, nil)
			slog.Debug("turn suspended for user input", "turn", turnID, "round", round)
			return TurnResult{Status: StatusNeedsInput, Question: decision.Content, Rounds: round}

		case model.KindFinalAnswer:
			answer, err := e.deliverAnswer(ctx, conv, decision.Content)
			if err != nil {
				return TurnResult{Status: StatusFailed, Rounds: round, Err: err}
			}
			conv.AddAssistant(answer, nil)
			slog.Debug("turn complete",
				"turn", turnID,
				"rounds", round,
				"duration", time.Since(started),
			)
			return TurnResult{Status: StatusDone, Answer: answer, Rounds: round}

		default:
			return TurnResult{
				Status: StatusFailed,
				Rounds: round,
				Err:    jayErrors.Protocol(fmt.Sprintf("unexpected decision kind %q", decision.Kind)),
			}
		}
	}

	return TurnResult{
		Status: StatusFailed,
		Rounds: e.turnBudget,
		Err:    fmt.Errorf("no final answer after %d rounds: %w", e.turnBudget, jayErrors.ErrTurnBudget),
	}
}

// deliverAnswer regenerates the decided answer as a token stream when a
// sink is attached. Nothing is committed to the conversation until the
// stream completes; an interrupt mid-stream abandons the turn with the
// partial text never entering the log.
func (e *Engine) deliverAnswer(ctx context.Context, conv *conversation.Conversation, decided string) (string, error) {
	if e.sink == nil {
		return decided, nil
	}

	stream, err := e.client.Stream(ctx, conv.Messages())
	if err != nil {
		// The decision already holds the full answer; deliver it unstreamed
		// rather than failing the turn on a second round-trip.
		slog.Warn("stream open failed, falling back to decided answer", "error", err)
		e.sink.OnDelta(decided)
		return decided, nil
	}
	defer stream.Close()

	var b strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("stream interrupted: %w", jayErrors.ErrInterrupted)
			}
			return "", fmt.Errorf("stream: %v: %w", err, jayErrors.ErrTransport)
		}
		b.WriteString(delta)
		e.sink.OnDelta(delta)
	}
}
