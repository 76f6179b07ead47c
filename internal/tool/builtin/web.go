package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	jayErrors "github.com/jaycli/jay/internal/errors"
	"github.com/jaycli/jay/internal/tool"
)

const serpAPIKeyEnv = "JAY_SERPAPI_KEY"

// WebSearch queries SerpAPI. Requires JAY_SERPAPI_KEY; without it the tool
// reports the missing key as a failed result instead of hiding itself from
// the catalogue, so the model can tell the user what to configure.
type WebSearch struct {
	baseURL    string
	maxResults int
	client     *http.Client
}

type WebSearchOptions struct {
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
}

func NewWebSearch(opts WebSearchOptions) *WebSearch {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = "https://serpapi.com/search.json"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	return &WebSearch{
		baseURL:    baseURL,
		maxResults: maxResults,
		client:     &http.Client{Timeout: timeout},
	}
}

func (t *WebSearch) Name() string { return "web_search" }

func (t *WebSearch) Description() string {
	return "Search the web and return the top organic results with titles, links and snippets."
}

func (t *WebSearch) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	}
}

func (t *WebSearch) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"web"}, Risk: tool.RiskLow}
}

type serpResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

func (t *WebSearch) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", jayErrors.InvalidInput("query is empty")
	}

	apiKey := os.Getenv(serpAPIKeyEnv)
	if apiKey == "" {
		return "", fmt.Errorf("web search is not configured: set %s", serpAPIKeyEnv)
	}

	params := url.Values{}
	params.Set("q", args.Query)
	params.Set("api_key", apiKey)
	params.Set("num", fmt.Sprintf("%d", t.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %v: %w", err, jayErrors.ErrToolRuntime)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search endpoint returned HTTP %d", resp.StatusCode)
	}

	var parsed serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse search response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("search endpoint error: %s", parsed.Error)
	}
	if len(parsed.OrganicResults) == 0 {
		return "no results", nil
	}

	var b strings.Builder
	for i, result := range parsed.OrganicResults {
		if i >= t.maxResults {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n", i+1, result.Title, result.Link, result.Snippet)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
