package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	jayErrors "github.com/jaycli/jay/internal/errors"
	"github.com/jaycli/jay/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAIClient(ClientOptions{
		BaseURL: srv.URL + "/v1",
		APIKey:  "test",
		Model:   "test-model",
	})
}

func completionResponse(t *testing.T, w http.ResponseWriter, message map[string]interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"model":   "test-model",
		"choices": []map[string]interface{}{{"index": 0, "message": message, "finish_reason": "stop"}},
	})
	require.NoError(t, err)
}

func TestDecide_FinalAnswer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		completionResponse(t, w, map[string]interface{}{
			"role":    "assistant",
			"content": "All done.",
		})
	})

	decision, err := client.Decide(context.Background(), []contract.Message{
		{Role: contract.RoleUser, Content: "hi"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, KindFinalAnswer, decision.Kind)
	assert.Equal(t, "All done.", decision.Content)
	assert.Empty(t, decision.ToolCalls)
}

func TestDecide_ToolCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		completionResponse(t, w, map[string]interface{}{
			"role":    "assistant",
			"content": "Let me check.",
			"tool_calls": []map[string]interface{}{
				{
					"id":   "call_abc",
					"type": "function",
					"function": map[string]interface{}{
						"name":      "read_file",
						"arguments": `{"path":"notes/todo.txt"}`,
					},
				},
			},
		})
	})

	decision, err := client.Decide(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, KindToolCalls, decision.Kind, "a response with tool calls is non-final even with text")
	require.Len(t, decision.ToolCalls, 1)
	assert.Equal(t, "call_abc", decision.ToolCalls[0].ID)
	assert.Equal(t, "read_file", decision.ToolCalls[0].Name)
	assert.JSONEq(t, `{"path":"notes/todo.txt"}`, decision.ToolCalls[0].Input)
}

func TestDecide_SynthesizesMissingCallID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		completionResponse(t, w, map[string]interface{}{
			"role": "assistant",
			"tool_calls": []map[string]interface{}{
				{"type": "function", "function": map[string]interface{}{"name": "time", "arguments": "{}"}},
			},
		})
	})

	decision, err := client.Decide(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, decision.ToolCalls, 1)
	assert.Equal(t, "call_1", decision.ToolCalls[0].ID)
}

func TestDecide_AskUserBecomesNeedsInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		completionResponse(t, w, map[string]interface{}{
			"role": "assistant",
			"tool_calls": []map[string]interface{}{
				{
					"id":   "call_q",
					"type": "function",
					"function": map[string]interface{}{
						"name":      AskUserToolName,
						"arguments": `{"question":"Which branch?"}`,
					},
				},
			},
		})
	})

	decision, err := client.Decide(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, KindNeedsInput, decision.Kind)
	assert.Equal(t, "Which branch?", decision.Content)
}

func TestDecide_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // endpoint unreachable

	client := NewOpenAIClient(ClientOptions{BaseURL: srv.URL + "/v1", APIKey: "test", Model: "m"})

	_, err := client.Decide(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, jayErrors.ErrTransport)
}

func TestDecide_NoChoicesIsProtocolError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "chatcmpl-1", "object": "chat.completion", "choices": []interface{}{},
		})
	})

	_, err := client.Decide(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, jayErrors.ErrProtocol)
}

func TestStream_DeltasAndEOF(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"Hel", "lo"}
		for _, c := range chunks {
			payload, _ := json.Marshal(map[string]interface{}{
				"id": "chatcmpl-1", "object": "chat.completion.chunk",
				"choices": []map[string]interface{}{
					{"index": 0, "delta": map[string]interface{}{"content": c}},
				},
			})
			w.Write([]byte("data: "))
			w.Write(payload)
			w.Write([]byte("\n\n"))
		}
		w.Write([]byte("data: [DONE]\n\n"))
	})

	stream, err := client.Stream(context.Background(), []contract.Message{{Role: contract.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	defer stream.Close()

	var got string
	for {
		delta, err := stream.Recv()
		if err != nil {
			break
		}
		got += delta
	}
	assert.Equal(t, "Hello", got)
}
