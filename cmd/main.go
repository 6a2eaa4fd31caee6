package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MimeLyc/deep-research-agent/internal/config"
	"github.com/MimeLyc/deep-research-agent/internal/research"
	"github.com/MimeLyc/deep-research-agent/pkg/icron"
	"github.com/MimeLyc/deep-research-agent/pkg/log"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"
)

type runner interface {
	Run(ctx context.Context, topic string) error
}

type cronEngine interface {
	AddFunc(expr string, cmd func()) (cron.EntryID, error)
	Start()
	Stop() context.Context
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to load .env: %v", err)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		return
	}
	closeLog := initLogger(cfg.System)
	defer closeLog()
	log.Debug("Config: %+v", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := research.NewApp(cfg)
	if err != nil {
		research.LogError(err)
		return
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("Failed to close store: %v", err)
		}
	}()

	engine := cron.New()
	if err := runWithComponents(ctx, cfg, app, engine); err != nil {
		research.LogError(err)
	}
}

// initLogger sets up the global logger, appending to LogFile when set.
// The returned func closes the log file.
func initLogger(cfg config.SystemConfig) func() {
	level := log.ParseLevel(cfg.LogLevel)
	if cfg.LogFile == "" {
		log.InitLogger(level)
		return func() {}
	}

	fileLogger, err := log.InitFileLogger(cfg.LogFile, level)
	if err != nil {
		log.InitLogger(level)
		log.Warn("Failed to open log file %s, logging to stdout: %v", cfg.LogFile, err)
		return func() {}
	}
	return func() {
		_ = fileLogger.Close()
	}
}

// runWithComponents runs the research once, or on cfg.Research.CronExpr
// until ctx is cancelled.
func runWithComponents(ctx context.Context, cfg *config.Config, r runner, engine cronEngine) error {
	if cfg.Research.CronExpr == "" {
		return r.Run(ctx, cfg.Research.Topic)
	}

	// a trigger that fires while a run is in flight joins it
	var group singleflight.Group
	expr := cfg.Research.CronExpr
	_, err := engine.AddFunc(expr, func() {
		_, _, _ = group.Do("run", func() (any, error) {
			if err := r.Run(ctx, cfg.Research.Topic); err != nil {
				research.LogError(err)
			}
			logNextTrigger(expr)
			return nil, nil
		})
	})
	if err != nil {
		return research.WrapError(err, research.ErrConfig, "schedule research").WithContext("cron", expr)
	}

	engine.Start()
	log.Info("Research scheduled with cron expression %q", expr)
	logNextTrigger(expr)

	<-ctx.Done()
	log.Info("Shutting down scheduler...")
	<-engine.Stop().Done()
	return nil
}

func logNextTrigger(expr string) {
	info, err := icron.GetTriggerInfo(expr, time.Now())
	if err != nil {
		log.Warn("Failed to compute next trigger: %v", err)
		return
	}
	log.Info("Next research run at %s (in %s)", info.Next.Format(time.RFC3339), info.TimeUntilNext.Round(time.Second))
}
