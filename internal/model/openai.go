package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jayErrors "github.com/jaycli/jay/internal/errors"
	"github.com/jaycli/jay/internal/model/contract"

	"github.com/sashabaranov/go-openai"
)

// AskUserToolName is the reserved pseudo-tool the model uses to ask the
// user a question mid-turn. It is advertised by the orchestrator, never
// dispatched by the executor; the client folds it into KindNeedsInput.
const AskUserToolName = "ask_user"

// AskUserToolDef returns the catalogue entry for the reserved pseudo-tool.
func AskUserToolDef() contract.ToolDef {
	return contract.ToolDef{
		Name:        AskUserToolName,
		Description: "Ask the user a clarifying question and wait for their reply. Use this instead of guessing.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to show the user",
				},
			},
			"required": []string{"question"},
		},
	}
}

type OpenAIClient struct {
	client         *openai.Client
	model          string
	embeddingModel string
}

type ClientOptions struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	RequestTimeout time.Duration
}

func NewOpenAIClient(opts ClientOptions) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if baseURL := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if opts.RequestTimeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.RequestTimeout}
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(cfg),
		model:          opts.Model,
		embeddingModel: opts.EmbeddingModel,
	}
}

var _ Client = (*OpenAIClient)(nil)

func (c *OpenAIClient) Decide(ctx context.Context, messages []contract.Message, tools []contract.ToolDef) (*Decision, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toChatMessages(messages),
		Tools:    toChatTools(tools),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %v: %w", err, jayErrors.ErrTransport)
	}
	if len(resp.Choices) == 0 {
		return nil, jayErrors.Protocol("endpoint returned no choices")
	}

	choice := resp.Choices[0]

	if len(choice.Message.ToolCalls) == 0 {
		return &Decision{Kind: KindFinalAnswer, Content: choice.Message.Content}, nil
	}

	var calls []*contract.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		name := strings.TrimSpace(tc.Function.Name)
		if name == "" {
			return nil, jayErrors.Protocol("tool call without a name")
		}
		id := tc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", len(calls)+1)
		}
		calls = append(calls, &contract.ToolCall{
			ID:    id,
			Name:  name,
			Input: tc.Function.Arguments,
		})
	}

	// A lone ask_user call suspends the turn instead of dispatching.
	if len(calls) == 1 && calls[0].Name == AskUserToolName {
		return &Decision{
			Kind:    KindNeedsInput,
			Content: extractQuestion(calls[0].Input),
		}, nil
	}

	return &Decision{Kind: KindToolCalls, Content: choice.Message.Content, ToolCalls: calls}, nil
}

func (c *OpenAIClient) Stream(ctx context.Context, messages []contract.Message) (TokenStream, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toChatMessages(messages),
		Stream:   true,
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat stream: %v: %w", err, jayErrors.ErrTransport)
	}
	return &openaiTokenStream{stream: stream}, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	model := c.embeddingModel
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: %v: %w", err, jayErrors.ErrTransport)
	}
	if len(resp.Data) == 0 {
		return nil, jayErrors.Protocol("no embedding data returned")
	}
	return resp.Data[0].Embedding, nil
}

type openaiTokenStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiTokenStream) Recv() (string, error) {
	for {
		chunk, err := s.stream.Recv()
		if err == io.EOF {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("stream recv: %v: %w", err, jayErrors.ErrTransport)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *openaiTokenStream) Close() error {
	return s.stream.Close()
}

func toChatMessages(messages []contract.Message) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			var tcs []openai.ToolCall
			for _, tc := range m.ToolCalls {
				tcs = append(tcs, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Input,
					},
				})
			}
			msg.ToolCalls = tcs
		}
		out = append(out, msg)
	}
	return out
}

func toChatTools(tools []contract.ToolDef) []openai.Tool {
	var out []openai.Tool
	for _, t := range tools {
		params := t.Parameters
		if params == nil {
			params = map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			}
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

func extractQuestion(input string) string {
	var args struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(input), &args); err == nil && strings.TrimSpace(args.Question) != "" {
		return args.Question
	}
	return strings.TrimSpace(input)
}
