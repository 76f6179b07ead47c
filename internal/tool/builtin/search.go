package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaycli/jay/internal/rag"
	"github.com/jaycli/jay/internal/tool"
)

// SearchIndex queries the workspace vector index. The index is an external
// collaborator; this tool is its only entry point into the loop.
type SearchIndex struct {
	index *rag.Index
	topK  int
}

func NewSearchIndex(index *rag.Index, topK int) *SearchIndex {
	if topK <= 0 {
		topK = 5
	}
	return &SearchIndex{index: index, topK: topK}
}

func (t *SearchIndex) Name() string { return "search_index" }

func (t *SearchIndex) Description() string {
	return "Search the workspace vector index for text similar to the query. Returns ranked snippets with their file paths."
}

func (t *SearchIndex) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Natural-language description of what to find",
			},
			"k": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results; defaults to 5",
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchIndex) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"search"}, Risk: tool.RiskLow}
}

func (t *SearchIndex) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Query string `json:"query"`
		K     int    `json:"k"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}

	k := args.K
	if k <= 0 {
		k = t.topK
	}

	hits, err := t.index.Query(ctx, args.Query, k)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "no matches; the index may not be built yet (run `jay index`)", nil
	}

	var b strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. [%.3f] %s\n%s\n", i+1, hit.Score, hit.ChunkID, hit.Snippet)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
