package llm

import (
	"fmt"
)

// Config holds the configuration for the chat model client.
// Any OpenAI-compatible endpoint works (DashScope, OpenRouter, OpenAI, ...).
//
// APIKey: bearer token for the endpoint (required)
// APIURL: base URL including the version segment, e.g. https://host/v1 (required)
// Model: model name (required)
// MaxTokens: completion token cap
// Temperature: sampling temperature (0-2)
// Timeout: request timeout in seconds
// MaxRetries: retries for rate limits, 5xx responses and transport errors
type Config struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	MaxRetries  int     `json:"max_retries"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("API URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be greater than 0")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	return nil
}
