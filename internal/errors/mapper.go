package errors

import (
	"context"
	"errors"
	"fmt"
)

// Category returns the taxonomy bucket name for an error, for logging and
// user-facing diagnostics.
func Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrTransport):
		return "TransportError"
	case errors.Is(err, ErrProtocol):
		return "ProtocolError"
	case errors.Is(err, ErrSandboxViolation):
		return "SandboxViolation"
	case errors.Is(err, ErrToolRuntime):
		return "ToolRuntimeError"
	case errors.Is(err, ErrTurnBudget):
		return "TurnBudgetExceeded"
	case errors.Is(err, ErrConfirmationRequired):
		return "ConfirmationRequired"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, ErrInterrupted):
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// FatalForTurn reports whether an error ends the turn without feeding a
// result back to the model. Only transport-level and budget failures do;
// every per-tool-call error is locally recoverable.
func FatalForTurn(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrTurnBudget)
}

// UserRetryHint reports whether the user should be told a retry may help.
// Transport failures warrant the hint, protocol failures do not.
func UserRetryHint(err error) bool {
	return errors.Is(err, ErrTransport)
}

// Wrap wraps an error with context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Transport wraps a message as a transport error.
func Transport(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransport)
}

// Protocol wraps a message as a protocol error.
func Protocol(message string) error {
	return fmt.Errorf("%s: %w", message, ErrProtocol)
}

// SandboxViolation wraps a message as a sandbox violation.
func SandboxViolation(message string) error {
	return fmt.Errorf("%s: %w", message, ErrSandboxViolation)
}

// ToolRuntime wraps a message as a tool runtime error.
func ToolRuntime(message string) error {
	return fmt.Errorf("%s: %w", message, ErrToolRuntime)
}

// NotFound wraps a message as not found.
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// InvalidInput wraps a message as invalid input.
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// ConfirmationRequired wraps a message as a missing confirmation flag.
func ConfirmationRequired(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConfirmationRequired)
}
