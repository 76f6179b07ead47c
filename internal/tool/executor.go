package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycli/jay/internal/model/contract"
)

// Executor turns model-issued tool calls into tool results. Every failure
// mode - unknown tool, malformed arguments, handler error, panic - is folded
// into a ToolResult with OK=false so the loop never aborts on a bad call.
type Executor struct {
	registry *Registry
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute dispatches a single tool call. It never returns an error; the
// result carries the outcome either way.
func (e *Executor) Execute(ctx context.Context, call contract.ToolCall) contract.ToolResult {
	started := time.Now()

	t, ok := e.registry.Get(call.Name)
	if !ok {
		return failure(call, fmt.Sprintf("unknown tool: %s", call.Name))
	}

	input := json.RawMessage(call.Input)
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	if schema := t.Parameters(); schema != nil {
		if err := ValidateInput(schema, input); err != nil {
			return failure(call, fmt.Sprintf("invalid arguments for %s: %v", call.Name, err))
		}
	}

	if requiresConfirmation(t) && !confirmed(input) {
		return failure(call, fmt.Sprintf("confirmation required: %s is destructive; retry with \"confirm\": true", call.Name))
	}

	output, err := safeExecute(ctx, t, input)

	slog.Debug("tool executed",
		"tool", call.Name,
		"call_id", call.ID,
		"ok", err == nil,
		"duration", time.Since(started),
	)

	if err != nil {
		return failure(call, fmt.Sprintf("%s failed: %v", call.Name, err))
	}

	return contract.ToolResult{ToolCallID: call.ID, Output: output, OK: true}
}

// ExecuteAll runs the calls sequentially in the order the model issued them
// and returns results in the same order.
func (e *Executor) ExecuteAll(ctx context.Context, calls []*contract.ToolCall) []contract.ToolResult {
	results := make([]contract.ToolResult, 0, len(calls))
	for _, call := range calls {
		if call == nil {
			continue
		}
		results = append(results, e.Execute(ctx, *call))
	}
	return results
}

func safeExecute(ctx context.Context, t Tool, input json.RawMessage) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return t.Execute(ctx, input)
}

func requiresConfirmation(t Tool) bool {
	provider, ok := t.(MetadataProvider)
	if !ok {
		return false
	}
	return normalizeToolMetadata(provider.ToolMetadata()).Risk == RiskHigh
}

func confirmed(input json.RawMessage) bool {
	var args struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return false
	}
	return args.Confirm
}

func failure(call contract.ToolCall, message string) contract.ToolResult {
	return contract.ToolResult{ToolCallID: call.ID, Output: message, OK: false}
}
