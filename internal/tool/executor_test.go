package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jaycli/jay/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecutorWith(t *testing.T, tools ...Tool) *Executor {
	t.Helper()
	r := NewRegistry()
	for _, tl := range tools {
		r.Register(tl)
	}
	return NewExecutor(r)
}

func TestExecutor_UnknownToolIsAFailedResult(t *testing.T) {
	e := newExecutorWith(t)

	result := e.Execute(context.Background(), contract.ToolCall{ID: "call_1", Name: "nope", Input: "{}"})

	assert.False(t, result.OK)
	assert.Equal(t, "call_1", result.ToolCallID)
	assert.Contains(t, result.Output, "unknown tool: nope")
}

func TestExecutor_ValidationFailureSkipsHandler(t *testing.T) {
	ft := &fakeTool{
		name: "write_file",
		schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{"type": "string"},
			},
			"required": []string{"path"},
		},
	}
	e := newExecutorWith(t, ft)

	result := e.Execute(context.Background(), contract.ToolCall{ID: "call_1", Name: "write_file", Input: `{"content":"x"}`})

	assert.False(t, result.OK)
	assert.Contains(t, result.Output, "missing required field: path")
	assert.Zero(t, ft.calls, "handler must not run on malformed arguments")
}

func TestExecutor_DestructiveToolRequiresConfirm(t *testing.T) {
	ft := &fakeTool{name: "delete_file", meta: &ToolMetadata{Risk: RiskHigh}}
	e := newExecutorWith(t, ft)

	denied := e.Execute(context.Background(), contract.ToolCall{ID: "call_1", Name: "delete_file", Input: `{"path":"a.txt"}`})
	assert.False(t, denied.OK)
	assert.Contains(t, denied.Output, "confirmation required")
	assert.Zero(t, ft.calls)

	allowed := e.Execute(context.Background(), contract.ToolCall{ID: "call_2", Name: "delete_file", Input: `{"path":"a.txt","confirm":true}`})
	assert.True(t, allowed.OK)
	assert.Equal(t, 1, ft.calls)
}

func TestExecutor_HandlerErrorBecomesFailedResult(t *testing.T) {
	ft := &fakeTool{
		name: "flaky",
		execute: func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("disk on fire")
		},
	}
	e := newExecutorWith(t, ft)

	result := e.Execute(context.Background(), contract.ToolCall{ID: "call_1", Name: "flaky", Input: "{}"})

	assert.False(t, result.OK)
	assert.Contains(t, result.Output, "flaky failed: disk on fire")
}

func TestExecutor_PanicIsContained(t *testing.T) {
	ft := &fakeTool{
		name: "boom",
		execute: func(context.Context, json.RawMessage) (string, error) {
			panic("unexpected nil")
		},
	}
	e := newExecutorWith(t, ft)

	result := e.Execute(context.Background(), contract.ToolCall{ID: "call_1", Name: "boom", Input: "{}"})

	assert.False(t, result.OK)
	assert.Contains(t, result.Output, "tool panicked: unexpected nil")
}

func TestExecutor_EmptyInputTreatedAsEmptyObject(t *testing.T) {
	ft := &fakeTool{name: "status"}
	e := newExecutorWith(t, ft)

	result := e.Execute(context.Background(), contract.ToolCall{ID: "call_1", Name: "status"})

	assert.True(t, result.OK)
	assert.Equal(t, "done", result.Output)
}

func TestExecutor_ExecuteAllPreservesOrder(t *testing.T) {
	var order []string
	mk := func(name string) *fakeTool {
		return &fakeTool{
			name: name,
			execute: func(context.Context, json.RawMessage) (string, error) {
				order = append(order, name)
				return name, nil
			},
		}
	}
	e := newExecutorWith(t, mk("alpha"), mk("beta"), mk("gamma"))

	calls := []*contract.ToolCall{
		{ID: "call_1", Name: "gamma", Input: "{}"},
		{ID: "call_2", Name: "alpha", Input: "{}"},
		{ID: "call_3", Name: "beta", Input: "{}"},
	}
	results := e.ExecuteAll(context.Background(), calls)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"gamma", "alpha", "beta"}, order, "tools run in the order the model issued them")
	assert.Equal(t, "call_1", results[0].ToolCallID)
	assert.Equal(t, "call_3", results[2].ToolCallID)
}

func TestExecutor_OneResultPerCallEvenOnMixedFailures(t *testing.T) {
	ok := &fakeTool{name: "ok"}
	bad := &fakeTool{
		name: "bad",
		execute: func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("nope")
		},
	}
	e := newExecutorWith(t, ok, bad)

	calls := []*contract.ToolCall{
		{ID: "call_1", Name: "ok", Input: "{}"},
		{ID: "call_2", Name: "bad", Input: "{}"},
		{ID: "call_3", Name: "missing", Input: "{}"},
	}
	results := e.ExecuteAll(context.Background(), calls)

	require.Len(t, results, 3)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.False(t, results[2].OK)
}
