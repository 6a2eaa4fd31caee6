package research

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MimeLyc/deep-research-agent/internal/agent"
	"github.com/MimeLyc/deep-research-agent/internal/backend"
	"github.com/MimeLyc/deep-research-agent/internal/config"
	"github.com/MimeLyc/deep-research-agent/internal/llm"
	"github.com/MimeLyc/deep-research-agent/internal/persistence"
	"github.com/MimeLyc/deep-research-agent/internal/prompts"
	"github.com/MimeLyc/deep-research-agent/internal/tools"
	"github.com/MimeLyc/deep-research-agent/pkg/log"
	"github.com/google/uuid"
)

const (
	researchAgentName        = "research-agent"
	researchAgentDescription = "Delegate research to the sub-agent researcher. Only give this researcher one topic at a time."
	memoriesRoute            = "/memories/"
	memoriesNamespace        = "filesystem"
)

// App runs research requests. It owns everything a run needs; there is
// no package-level state.
type App struct {
	config  *config.Config
	model   agent.ChatModel
	invoker agent.Invoker
	store   persistence.Store
	out     io.Writer
	now     func() time.Time

	ownsStore bool
}

type Option func(*App)

// WithChatModel replaces the LLM client built from the configuration.
func WithChatModel(model agent.ChatModel) Option {
	return func(a *App) {
		a.model = model
	}
}

// WithInvoker replaces the whole agent.
func WithInvoker(invoker agent.Invoker) Option {
	return func(a *App) {
		a.invoker = invoker
	}
}

// WithStore replaces the store selected by STORE_PATH. The caller keeps
// ownership and closes it.
func WithStore(store persistence.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithWriter sets where the trace and output check are printed (default stdout).
func WithWriter(w io.Writer) Option {
	return func(a *App) {
		a.out = w
	}
}

// NewApp wires an App from cfg.
func NewApp(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, NewError(ErrConfig, "config is required")
	}

	a := &App{
		config: cfg,
		out:    os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.model == nil && a.invoker == nil {
		client, err := llm.NewClient(&llm.Config{
			APIKey:      cfg.LLM.APIKey,
			APIURL:      cfg.LLM.APIURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			MaxRetries:  cfg.LLM.MaxRetries,
		})
		if err != nil {
			return nil, WrapError(err, ErrConfig, "create chat model client").WithContext("model", cfg.LLM.Model)
		}
		a.model = client
	}

	if a.store == nil {
		store, err := openStore(cfg.System.StorePath)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.ownsStore = true
	}

	if cfg.Search.APIKey == "" {
		log.Warn("TAVILY_API_KEY is not set; tavily_search calls will fail")
	}
	return a, nil
}

func openStore(path string) (persistence.Store, error) {
	if strings.TrimSpace(path) == "" {
		return persistence.NewMemoryStore(), nil
	}
	store, err := persistence.NewSQLiteStore(path)
	if err != nil {
		return nil, WrapError(err, ErrStore, "open store").WithContext("path", path)
	}
	log.Info("Using SQLite store at %s", path)
	return store, nil
}

// Close releases the store if NewApp opened it.
func (a *App) Close() error {
	if a.ownsStore && a.store != nil {
		return a.store.Close()
	}
	return nil
}

// History returns the most recent runs, newest first.
func (a *App) History(ctx context.Context, limit int) ([]persistence.RunRecord, error) {
	runs, err := a.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, WrapError(err, ErrStore, "list runs")
	}
	return runs, nil
}

// Usage reports the tokens spent by the chat model so far, when the model
// keeps count.
func (a *App) Usage() (llm.Usage, bool) {
	counter, ok := a.model.(interface{ Usage() llm.Usage })
	if !ok {
		return llm.Usage{}, false
	}
	return counter.Usage(), true
}

func (a *App) logUsage() {
	if usage, ok := a.Usage(); ok {
		log.Info("Token usage: prompt=%d completion=%d total=%d",
			usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
	}
}

// Run researches topic once: it clears old outputs, invokes the agent with
// retries, prints the trace and checks the output directory. The error of
// the last failed attempt is returned unwrapped.
func (a *App) Run(ctx context.Context, topic string) error {
	log.Info("Starting research agent...")
	log.Info("Research topic: '%s'", topic)

	outputDir := a.config.Research.OutputDir
	if _, err := CleanOutputs(outputDir); err != nil {
		return err
	}

	invoker := a.invoker
	if invoker == nil {
		built, err := a.buildAgent(topic)
		if err != nil {
			return err
		}
		invoker = built
	}

	run := persistence.RunRecord{
		ID:        uuid.NewString(),
		Topic:     topic,
		Status:    persistence.RunRunning,
		StartedAt: a.now().UTC(),
	}
	a.recordRun(ctx, run)

	policy := RetryPolicy{MaxRetries: a.config.Research.MaxRetries, Delay: a.config.Research.RetryDelay}
	result, attempts, err := runWithRetry(ctx, invoker, agent.Messages(topic), policy)
	a.logUsage()

	run.Attempts = attempts
	run.FinishedAt = a.now().UTC()
	if err != nil {
		run.Status = persistence.RunFailed
		run.Error = err.Error()
		a.recordRun(context.WithoutCancel(ctx), run)
		return err
	}
	run.Status = persistence.RunSucceeded
	a.recordRun(ctx, run)

	var summary Summary
	if result != nil {
		summary = PrintTrace(a.out, result.Messages)
	} else {
		log.Warn("RESEARCH_MAX_RETRIES is 0; the agent was not invoked")
	}

	report, err := InspectOutputs(outputDir, RequestFile, ReportFile)
	if err != nil {
		return err
	}
	PrintOutputs(a.out, report, summary)
	return nil
}

func (a *App) recordRun(ctx context.Context, run persistence.RunRecord) {
	if err := a.store.RecordRun(ctx, run); err != nil {
		log.Warn("record run %s: %v", run.ID, err)
	}
}

// buildAgent assembles the deep agent for one run. The prompts carry the
// current date and the language of topic.
func (a *App) buildAgent(topic string) (*agent.DeepAgent, error) {
	cfg := a.config
	params := prompts.NewParams(
		a.now(),
		cfg.Agent.MaxConcurrentResearchUnits,
		cfg.Agent.MaxResearcherIterations,
		prompts.DetectLanguage(topic),
	)

	instructions, err := prompts.FullResearchInstructions(params)
	if err != nil {
		return nil, WrapError(err, ErrConfig, "render research instructions")
	}
	researcherPrompt, err := prompts.Researcher(params)
	if err != nil {
		return nil, WrapError(err, ErrConfig, "render researcher instructions")
	}

	b, err := a.buildBackend()
	if err != nil {
		return nil, err
	}

	search := tools.NewTavilySearchTool(cfg.Search.APIKey, cfg.Search.APIURL, cfg.Search.MaxResults, cfg.Search.Topic)
	think := tools.NewThinkTool()
	researchTools := []tools.Tool{search, think}

	deep, err := agent.New(agent.Config{
		Model:        a.model,
		Tools:        researchTools,
		SystemPrompt: instructions,
		SubAgents: []agent.SubAgent{{
			Name:         researchAgentName,
			Description:  researchAgentDescription,
			SystemPrompt: researcherPrompt,
			Tools:        researchTools,
		}},
		Backend:        b,
		MaxIterations:  cfg.Agent.MaxIterations,
		MaxConcurrency: cfg.Agent.MaxConcurrentResearchUnits,
		Debug:          cfg.Agent.Debug,
	})
	if err != nil {
		return nil, WrapError(err, ErrConfig, "create agent")
	}
	return deep, nil
}

// buildBackend routes /memories/ to the store and everything else to the
// output directory.
func (a *App) buildBackend() (backend.Backend, error) {
	dir, err := filepath.Abs(a.config.Research.OutputDir)
	if err != nil {
		return nil, WrapError(err, ErrOutput, "resolve output directory").WithContext("dir", a.config.Research.OutputDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, WrapError(err, ErrOutput, "create output directory").WithContext("dir", dir)
	}
	files := backend.NewFilesystemBackend(dir, true)
	log.Info("Backend configured. Files will be saved to: %s", files.Root())

	return backend.NewCompositeBackend(
		files,
		map[string]backend.Backend{
			memoriesRoute: backend.NewStoreBackend(a.store, memoriesNamespace),
		},
	), nil
}
