package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DASHSCOPE_API_KEY", "DASHSCOPE_API_BASE", "LLM_MODEL", "LLM_MAX_TOKENS",
		"LLM_TEMPERATURE", "LLM_TIMEOUT", "LLM_MAX_RETRIES",
		"TAVILY_API_KEY", "TAVILY_API_URL", "SEARCH_MAX_RESULTS", "SEARCH_TOPIC",
		"RESEARCH_TOPIC", "RESEARCH_OUTPUT_DIR", "RESEARCH_MAX_RETRIES",
		"RESEARCH_RETRY_DELAY", "RESEARCH_CRON",
		"MAX_CONCURRENT_RESEARCH_UNITS", "MAX_RESEARCHER_ITERATIONS",
		"AGENT_MAX_ITERATIONS", "AGENT_DEBUG", "STORE_PATH", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://dashscope.aliyuncs.com/compatible-mode/v1", cfg.LLM.APIURL)
	assert.Equal(t, "qwen-max-2025-01-25", cfg.LLM.Model)
	assert.Equal(t, 60, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, DefaultTopic, cfg.Research.Topic)
	assert.Equal(t, "research_outputs", cfg.Research.OutputDir)
	assert.Equal(t, 3, cfg.Research.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Research.RetryDelay)
	assert.Equal(t, 3, cfg.Agent.MaxConcurrentResearchUnits)
	assert.Equal(t, 3, cfg.Agent.MaxResearcherIterations)
	assert.True(t, cfg.Agent.Debug)
	assert.Equal(t, 1, cfg.Search.MaxResults)
	assert.Equal(t, "general", cfg.Search.Topic)
	assert.Empty(t, cfg.System.StorePath)
	assert.Empty(t, cfg.System.LogFile)
}

func TestNewFromEnv_MissingAPIKeyIsNotAConfigError(t *testing.T) {
	clearEnv(t)

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestNewFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHSCOPE_API_KEY", "sk-test")
	t.Setenv("DASHSCOPE_API_BASE", "http://localhost:9999/v1")
	t.Setenv("RESEARCH_RETRY_DELAY", "0.5")
	t.Setenv("AGENT_DEBUG", "false")
	t.Setenv("RESEARCH_CRON", "@daily")
	t.Setenv("LLM_TIMEOUT", "not-a-number")

	cfg, err := NewFromEnv(WithTopic("quantum batteries"), WithOutputDir("/tmp/out"))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.APIURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Research.RetryDelay)
	assert.False(t, cfg.Agent.Debug)
	assert.Equal(t, "@daily", cfg.Research.CronExpr)
	assert.Equal(t, 60, cfg.LLM.Timeout)
	assert.Equal(t, "quantum batteries", cfg.Research.Topic)
	assert.Equal(t, "/tmp/out", cfg.Research.OutputDir)
}

func TestNewFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		msg  string
	}{
		{name: "negative retries", key: "RESEARCH_MAX_RETRIES", val: "-1", msg: "RESEARCH_MAX_RETRIES"},
		{name: "zero concurrency", key: "MAX_CONCURRENT_RESEARCH_UNITS", val: "0", msg: "MAX_CONCURRENT_RESEARCH_UNITS"},
		{name: "zero iterations", key: "AGENT_MAX_ITERATIONS", val: "0", msg: "AGENT_MAX_ITERATIONS"},
		{name: "bad cron", key: "RESEARCH_CRON", val: "every tuesday", msg: "RESEARCH_CRON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := NewFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewFromEnv_ZeroRetriesAllowed(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESEARCH_MAX_RETRIES", "0")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Research.MaxRetries)
}

func TestConfig_Redacted(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHSCOPE_API_KEY", "sk-secret")
	t.Setenv("TAVILY_API_KEY", "tvly-secret")
	t.Setenv("LOG_FILE", "/var/log/research.log")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/research.log", cfg.System.LogFile)

	redacted := cfg.Redacted()
	printed := fmt.Sprintf("%+v", redacted)
	assert.NotContains(t, printed, "sk-secret")
	assert.NotContains(t, printed, "tvly-secret")
	assert.Equal(t, "***", redacted.LLM.APIKey)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)

	clearEnv(t)
	cfg, err = NewFromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.Redacted().Search.APIKey)
}
