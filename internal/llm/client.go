package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MimeLyc/deep-research-agent/pkg/log"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

// RawArgumentsKey holds tool-call arguments the model sent as invalid JSON.
const RawArgumentsKey = "__raw_arguments"

const defaultRetryBackoff = 500 * time.Millisecond

// Client talks to an OpenAI-compatible chat completions endpoint.
// Safe for concurrent use.
type Client struct {
	config     *Config
	api        *openai.Client
	httpClient *http.Client
	backoff    time.Duration

	mu    sync.Mutex
	usage Usage
}

// NewClient creates a new client with the given configuration
//
// Example:
//
//	client, err := llm.NewClient(&llm.Config{
//		APIKey: os.Getenv("DASHSCOPE_API_KEY"),
//		APIURL: os.Getenv("DASHSCOPE_API_BASE"),
//		Model:  "qwen-max-2025-01-25",
//		MaxTokens: 8000, Temperature: 0.7, Timeout: 60, MaxRetries: 3,
//	})
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(config.Timeout) * time.Second,
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	apiConfig.BaseURL = strings.TrimRight(config.APIURL, "/")
	apiConfig.HTTPClient = httpClient

	return &Client{
		config:     config,
		api:        openai.NewClientWithConfig(apiConfig),
		httpClient: httpClient,
		backoff:    defaultRetryBackoff,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// Usage returns the token usage accumulated over all successful calls.
func (c *Client) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// Chat sends one model turn and returns the assistant message.
//
// Rate limits, 5xx responses and transport errors are retried up to
// Config.MaxRetries times with exponential backoff.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*AIMessage, error) {
	request := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    toOpenAIMessages(req.SystemPrompt, req.Messages),
		MaxTokens:   c.getMaxTokens(req),
		Temperature: float32(c.getTemperature(req)),
	}
	if len(req.Tools) > 0 {
		request.Tools = toOpenAITools(req.Tools)
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = c.api.CreateChatCompletion(ctx, request)
		if err == nil {
			break
		}
		if attempt >= c.config.MaxRetries || !isRetryable(ctx, err) {
			return nil, fmt.Errorf("chat completion failed: %w", err)
		}

		delay := c.backoff << attempt
		log.Warn("chat completion attempt %d/%d failed, retrying in %s: %v",
			attempt+1, c.config.MaxRetries+1, delay, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	c.addUsage(resp.Usage)

	msg := fromOpenAIMessage(resp.Choices[0].Message)
	return &msg, nil
}

func (c *Client) addUsage(u openai.Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage.PromptTokens += u.PromptTokens
	c.usage.CompletionTokens += u.CompletionTokens
	c.usage.TotalTokens += u.TotalTokens
}

// getMaxTokens returns the max tokens to use for the request
func (c *Client) getMaxTokens(req ChatRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return c.config.MaxTokens
}

// getTemperature returns the temperature to use for the request
func (c *Client) getTemperature(req ChatRequest) float64 {
	if req.Temperature != nil && *req.Temperature >= 0 && *req.Temperature <= 2 {
		return *req.Temperature
	}
	return c.config.Temperature
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	// transport-level failure (connection reset, timeout, ...)
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func toOpenAIMessages(systemPrompt string, messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, m := range messages {
		switch msg := m.(type) {
		case SystemMessage:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: msg.Content,
			})
		case HumanMessage:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		case AIMessage:
			wire := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, tc := range msg.ToolCalls {
				wire.ToolCalls = append(wire.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.ArgsJSON(),
					},
				})
			}
			out = append(out, wire)
		case ToolMessage:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    msg.Content,
				ToolCallID: msg.ToolCallID,
			})
		}
	}
	return out
}

func toOpenAITools(defs []ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

func fromOpenAIMessage(wire openai.ChatCompletionMessage) AIMessage {
	msg := AIMessage{Content: wire.Content}
	for _, tc := range wire.ToolCalls {
		id := tc.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:   id,
			Name: tc.Function.Name,
			Args: parseArguments(tc.Function.Arguments),
		})
	}
	return msg
}

func parseArguments(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{RawArgumentsKey: raw}
	}
	return args
}
