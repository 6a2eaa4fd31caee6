package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearchTool_Name(t *testing.T) {
	tool := NewTavilySearchTool("test-api-key", "", 1, "general")
	assert.Equal(t, "tavily_search", tool.Name())
	assert.Contains(t, tool.Description(), "think_tool")
}

func TestTavilySearchTool_Execute(t *testing.T) {
	var received TavilyRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TavilyResponse{
			Query: received.Query,
			Results: []TavilyResult{
				{Title: "Context Engineering", URL: "https://example.com/ce", Content: "snippet", RawContent: "# Full page"},
				{Title: "Second", URL: "https://example.com/2", Content: "only snippet"},
			},
		})
	}))
	t.Cleanup(server.Close)

	tool := NewTavilySearchTool("test-api-key", server.URL, 1, "general")
	res, err := tool.Execute(context.Background(), map[string]any{"query": "context engineering", "max_results": float64(2)})
	require.NoError(t, err)
	require.False(t, res.IsError, res.Content)

	assert.Equal(t, "context engineering", received.Query)
	assert.Equal(t, 2, received.MaxResults)
	assert.Equal(t, "general", received.Topic)
	assert.Equal(t, "markdown", received.IncludeRawContent)

	assert.Contains(t, res.Content, "## Context Engineering\n**URL:** https://example.com/ce")
	assert.Contains(t, res.Content, "# Full page")
	assert.Contains(t, res.Content, "only snippet")
	assert.Equal(t, 2, strings.Count(res.Content, "---"))
}

func TestTavilySearchTool_InvalidArgs(t *testing.T) {
	tool := NewTavilySearchTool("k", "http://127.0.0.1:0", 1, "general")

	res, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tool.Execute(context.Background(), map[string]any{"query": "x", "topic": "sports"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "sports")
}

func TestTavilySearchTool_BacksOffOnRateLimit(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"q","results":[]}`))
	}))
	t.Cleanup(server.Close)

	tool := NewTavilySearchTool("k", server.URL, 1, "")
	tool.backoff = time.Millisecond

	res, err := tool.Execute(context.Background(), map[string]any{"query": "q"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content, "No results found")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTavilySearchTool_ServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad key"}`))
	}))
	t.Cleanup(server.Close)

	tool := NewTavilySearchTool("k", server.URL, 1, "")
	res, err := tool.Execute(context.Background(), map[string]any{"query": "q"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "status 401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 3))
	assert.Equal(t, "研究...", truncateRunes("研究报告", 2))
}

// Integration test for real Tavily API
func TestTavilySearchTool_Integration(t *testing.T) {
	apiKey := os.Getenv("TAVILY_API_KEY")
	if apiKey == "" || testing.Short() {
		t.Skip("TAVILY_API_KEY not set")
	}

	tool := NewTavilySearchTool(apiKey, "", 1, "general")
	res, err := tool.Execute(context.Background(), map[string]any{"query": "context engineering for AI agents"})
	require.NoError(t, err)
	assert.False(t, res.IsError, res.Content)
	assert.Contains(t, res.Content, "**URL:**")
}
