package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MimeLyc/deep-research-agent/pkg/icron"
)

// DefaultTopic is the research request used when RESEARCH_TOPIC is unset.
const DefaultTopic = "research context engineering approaches used to build AI agents"

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// LLM Configuration:
// - DASHSCOPE_API_BASE: OpenAI-compatible endpoint (default: https://dashscope.aliyuncs.com/compatible-mode/v1)
// - DASHSCOPE_API_KEY: API key for the endpoint (validated by the LLM client)
// - LLM_MODEL: Model name (default: qwen-max-2025-01-25)
// - LLM_MAX_TOKENS: Maximum tokens per completion (default: 8000)
// - LLM_TEMPERATURE: Sampling temperature (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 60)
// - LLM_MAX_RETRIES: Client-level retries for transient API errors (default: 3)
//
// Search Configuration:
// - TAVILY_API_KEY: Tavily API key
// - TAVILY_API_URL: Tavily endpoint (default: https://api.tavily.com/search)
// - SEARCH_MAX_RESULTS: Default results per search (default: 1)
// - SEARCH_TOPIC: Default search topic (default: general)
//
// Research Configuration:
// - RESEARCH_TOPIC: Research request (default: DefaultTopic)
// - RESEARCH_OUTPUT_DIR: Directory the agent writes into (default: research_outputs)
// - RESEARCH_MAX_RETRIES: Attempts of the whole agent run (default: 3)
// - RESEARCH_RETRY_DELAY: Seconds between attempts (default: 2)
// - RESEARCH_CRON: Cron expression; empty runs once (default: empty)
//
// Agent Configuration:
// - MAX_CONCURRENT_RESEARCH_UNITS: Parallel sub-agent tasks (default: 3)
// - MAX_RESEARCHER_ITERATIONS: Delegation rounds allowed (default: 3)
// - AGENT_MAX_ITERATIONS: Model turns per agent run (default: 40)
// - AGENT_DEBUG: Log every model turn and tool call (default: true)
//
// System Configuration:
// - STORE_PATH: SQLite file for the store; empty keeps it in memory
// - LOG_LEVEL: debug, info, warn, error (default: info)
// - LOG_FILE: Append log lines to this file instead of stdout (default: empty)
type Config struct {
	LLM      LLMConfig      `json:"llm"`
	Search   SearchConfig   `json:"search"`
	Research ResearchConfig `json:"research"`
	Agent    AgentConfig    `json:"agent"`
	System   SystemConfig   `json:"system"`
}

// LLMConfig holds the configuration for the chat model client
type LLMConfig struct {
	APIKey      string  `json:"-"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	MaxRetries  int     `json:"max_retries"`
}

// SearchConfig holds the configuration for the web search tool
type SearchConfig struct {
	APIKey     string `json:"-"`
	APIURL     string `json:"api_url"`
	MaxResults int    `json:"max_results"`
	Topic      string `json:"topic"`
}

type ResearchConfig struct {
	Topic      string        `json:"topic"`
	OutputDir  string        `json:"output_dir"`
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`
	CronExpr   string        `json:"cron_expr"`
}

type AgentConfig struct {
	MaxConcurrentResearchUnits int  `json:"max_concurrent_research_units"`
	MaxResearcherIterations    int  `json:"max_researcher_iterations"`
	MaxIterations              int  `json:"max_iterations"`
	Debug                      bool `json:"debug"`
}

type SystemConfig struct {
	StorePath string `json:"store_path"`
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// WithTopic overrides the research request.
func WithTopic(topic string) Option {
	return func(c *Config) {
		c.Research.Topic = topic
	}
}

// WithOutputDir overrides the output directory.
func WithOutputDir(dir string) Option {
	return func(c *Config) {
		c.Research.OutputDir = dir
	}
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("DASHSCOPE_API_KEY", ""),
			APIURL:      getEnvString("DASHSCOPE_API_BASE", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
			Model:       getEnvString("LLM_MODEL", "qwen-max-2025-01-25"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvInt("LLM_TIMEOUT", 60),
			MaxRetries:  getEnvInt("LLM_MAX_RETRIES", 3),
		},
		Search: SearchConfig{
			APIKey:     getEnvString("TAVILY_API_KEY", ""),
			APIURL:     getEnvString("TAVILY_API_URL", "https://api.tavily.com/search"),
			MaxResults: getEnvInt("SEARCH_MAX_RESULTS", 1),
			Topic:      getEnvString("SEARCH_TOPIC", "general"),
		},
		Research: ResearchConfig{
			Topic:      getEnvString("RESEARCH_TOPIC", DefaultTopic),
			OutputDir:  getEnvString("RESEARCH_OUTPUT_DIR", "research_outputs"),
			MaxRetries: getEnvInt("RESEARCH_MAX_RETRIES", 3),
			RetryDelay: getEnvSeconds("RESEARCH_RETRY_DELAY", 2*time.Second),
			CronExpr:   getEnvString("RESEARCH_CRON", ""),
		},
		Agent: AgentConfig{
			MaxConcurrentResearchUnits: getEnvInt("MAX_CONCURRENT_RESEARCH_UNITS", 3),
			MaxResearcherIterations:    getEnvInt("MAX_RESEARCHER_ITERATIONS", 3),
			MaxIterations:              getEnvInt("AGENT_MAX_ITERATIONS", 40),
			Debug:                      getEnvBool("AGENT_DEBUG", true),
		},
		System: SystemConfig{
			StorePath: getEnvString("STORE_PATH", ""),
			LogLevel:  getEnvString("LOG_LEVEL", "info"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Redacted returns a copy of c that is safe to log.
func (c Config) Redacted() Config {
	c.LLM.APIKey = redact(c.LLM.APIKey)
	c.Search.APIKey = redact(c.Search.APIKey)
	return c
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}

// validate checks numeric bounds and the schedule. API keys are left to the
// clients that use them.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Research.Topic) == "" {
		return fmt.Errorf("RESEARCH_TOPIC must not be empty")
	}
	if strings.TrimSpace(c.Research.OutputDir) == "" {
		return fmt.Errorf("RESEARCH_OUTPUT_DIR must not be empty")
	}
	if c.Research.MaxRetries < 0 {
		return fmt.Errorf("RESEARCH_MAX_RETRIES must not be negative")
	}
	if c.Research.RetryDelay < 0 {
		return fmt.Errorf("RESEARCH_RETRY_DELAY must not be negative")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}
	if c.Agent.MaxConcurrentResearchUnits < 1 {
		return fmt.Errorf("MAX_CONCURRENT_RESEARCH_UNITS must be at least 1")
	}
	if c.Agent.MaxResearcherIterations < 1 {
		return fmt.Errorf("MAX_RESEARCHER_ITERATIONS must be at least 1")
	}
	if c.Agent.MaxIterations < 1 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be at least 1")
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be at least 1")
	}
	if c.Research.CronExpr != "" {
		if _, err := icron.Parse(c.Research.CronExpr); err != nil {
			return fmt.Errorf("RESEARCH_CRON: %w", err)
		}
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSeconds reads a duration given in (possibly fractional) seconds.
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.ParseFloat(value, 64); err == nil {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return defaultValue
}
