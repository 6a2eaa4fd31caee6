package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MimeLyc/deep-research-agent/pkg/log"
)

const (
	defaultTavilyURL     = "https://api.tavily.com/search"
	maxResultContentRune = 3000
	maxRateLimitRetries  = 3
	maxRateLimitBackoff  = 30 * time.Second
)

// TavilySearchTool searches the web through the Tavily API
type TavilySearchTool struct {
	apiKey     string
	apiURL     string
	maxResults int
	topic      string
	httpClient *http.Client
	backoff    time.Duration
}

// TavilySearchArgs represents the arguments for a search
type TavilySearchArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
	Topic      string `json:"topic,omitempty"` // general, news, finance
}

// TavilyRequest represents a request to Tavily API
type TavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	Topic             string `json:"topic,omitempty"`
	SearchDepth       string `json:"search_depth,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeRawContent string `json:"include_raw_content,omitempty"`
}

// TavilyResponse represents a response from Tavily API
type TavilyResponse struct {
	Query   string         `json:"query"`
	Results []TavilyResult `json:"results"`
}

// TavilyResult represents a single search result
type TavilyResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content,omitempty"`
	Score      float64 `json:"score"`
}

// NewTavilySearchTool creates the tavily_search tool. maxResults and topic
// are the defaults used when the model omits them.
func NewTavilySearchTool(apiKey, apiURL string, maxResults int, topic string) *TavilySearchTool {
	if apiURL == "" {
		apiURL = defaultTavilyURL
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if topic == "" {
		topic = "general"
	}
	return &TavilySearchTool{
		apiKey:     apiKey,
		apiURL:     apiURL,
		maxResults: maxResults,
		topic:      topic,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: time.Second,
	}
}

func (t *TavilySearchTool) Name() string {
	return "tavily_search"
}

func (t *TavilySearchTool) Description() string {
	return `Search the web for information on a given query.
Returns the full page content of each result as markdown, so one good query usually beats several vague ones.
Use think_tool after each search to decide whether more searching is needed.`
}

func (t *TavilySearchTool) Parameters() json.RawMessage {
	schema := `{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Search query to execute"
			},
			"max_results": {
				"type": "integer",
				"description": "Maximum number of results to return"
			},
			"topic": {
				"type": "string",
				"enum": ["general", "news", "finance"],
				"description": "Topic filter for the search"
			}
		},
		"required": ["query"]
	}`
	return json.RawMessage(schema)
}

func (t *TavilySearchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var searchArgs TavilySearchArgs
	if err := DecodeArgs(args, &searchArgs); err != nil {
		return errorResult("Failed to parse search arguments: %v", err), nil
	}
	if strings.TrimSpace(searchArgs.Query) == "" {
		return errorResult("query is required"), nil
	}
	switch searchArgs.Topic {
	case "":
		searchArgs.Topic = t.topic
	case "general", "news", "finance":
	default:
		return errorResult("unknown topic %q: use general, news or finance", searchArgs.Topic), nil
	}
	if searchArgs.MaxResults < 1 {
		searchArgs.MaxResults = t.maxResults
	}

	results, err := t.search(ctx, searchArgs)
	if err != nil {
		return errorResult("Search failed: %v", err), nil
	}

	return ToolResult{Content: formatResults(searchArgs.Query, results)}, nil
}

func (t *TavilySearchTool) search(ctx context.Context, args TavilySearchArgs) (*TavilyResponse, error) {
	request := TavilyRequest{
		APIKey:            t.apiKey,
		Query:             args.Query,
		Topic:             args.Topic,
		SearchDepth:       "basic",
		MaxResults:        args.MaxResults,
		IncludeRawContent: "markdown",
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	delay := t.backoff
	for attempt := 0; ; attempt++ {
		resp, retryable, err := t.do(ctx, jsonData)
		if err == nil {
			return resp, nil
		}
		if !retryable || attempt >= maxRateLimitRetries {
			return nil, err
		}

		log.Warn("tavily rate limited, retrying in %s", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRateLimitBackoff {
			delay = maxRateLimitBackoff
		}
	}
}

// do performs one request. The bool reports whether the failure was a rate limit.
func (t *TavilySearchTool) do(ctx context.Context, body []byte) (*TavilyResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("API rate limit (status 429): %s", string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var tavilyResp TavilyResponse
	if err := json.Unmarshal(respBody, &tavilyResp); err != nil {
		return nil, false, fmt.Errorf("failed to parse response: %w", err)
	}
	return &tavilyResp, false, nil
}

func formatResults(query string, resp *TavilyResponse) string {
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No results found for %q.", query)
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d result(s) for '%s':\n\n", len(resp.Results), query)
	for _, r := range resp.Results {
		content := r.RawContent
		if strings.TrimSpace(content) == "" {
			content = r.Content
		}
		content = truncateRunes(content, maxResultContentRune)

		fmt.Fprintf(&result, "## %s\n", r.Title)
		fmt.Fprintf(&result, "**URL:** %s\n\n", r.URL)
		result.WriteString(content)
		result.WriteString("\n\n---\n\n")
	}
	return result.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
