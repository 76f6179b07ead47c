package errors

import (
	"errors"
)

// Sentinel errors for the agent error taxonomy.
var (
	// ErrTransport - model endpoint unreachable or returned a malformed HTTP
	// response. Ends the current turn; a retry hint is shown to the user.
	ErrTransport = errors.New("transport error")

	// ErrProtocol - the endpoint emitted a response the client cannot use
	// (no choices, tool call without a name). Fed back to the model as a
	// failed tool result where possible, never a crash.
	ErrProtocol = errors.New("protocol error")

	// ErrSandboxViolation - path escape or blocked command. Always reported
	// as a failed tool result with the specific reason.
	ErrSandboxViolation = errors.New("sandbox violation")

	// ErrToolRuntime - handler-level failure: nonzero exit, I/O error,
	// timeout. Captured verbatim into the tool result text.
	ErrToolRuntime = errors.New("tool runtime error")

	// ErrTurnBudget - too many model/tool round-trips in one turn. Fatal
	// for the turn only; the conversation persists.
	ErrTurnBudget = errors.New("turn budget exceeded")

	// ErrConfirmationRequired - a destructive tool call arrived without the
	// explicit confirm flag.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrNotFound - resource not found (unknown tool, missing session).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput - tool arguments failed schema validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInterrupted - the user cancelled the in-flight turn.
	ErrInterrupted = errors.New("interrupted")
)
