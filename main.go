package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "trendpulse/app/configs"
	"trendpulse/app/core/interaction/auth"
	httpapi "trendpulse/app/core/interaction/http"
	"trendpulse/app/core/news"
	"trendpulse/app/core/pipeline"
	"trendpulse/app/core/provider"
	"trendpulse/app/core/scheduler"
	"trendpulse/app/core/store"
	"trendpulse/app/pkg/logger"
)

func main() {
	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("TrendPulse starting...")

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	database, err := store.NewSQLiteDB("output/db")
	if err != nil {
		logger.Error("Failed to initialize DB: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("Database initialized successfully")

	tasks := store.NewTasks(database)
	results := store.NewResults(database)

	chain := provider.ChainFromConfig(cfg.AI)
	fetcher := news.NewFetcher(cfg.News)
	processor := pipeline.NewProcessor(tasks, results, fetcher, chain)
	service := pipeline.NewService(tasks, results, chain, processor, cfg.Scheduler.ResultPageLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One reconciliation pass per process start: results whose task was
	// deleted since the last run get reclaimed here.
	if _, err := pipeline.SweepOrphans(ctx, tasks, results); err != nil {
		logger.Error("Orphan sweep failed: %v", err)
	}

	trigger := pipeline.NewTrigger(tasks, processor, time.Duration(cfg.Scheduler.StalenessSec)*time.Second)

	jobScheduler := scheduler.New()
	if err := jobScheduler.Register(trigger.Job(time.Duration(cfg.Scheduler.TickSec) * time.Second)); err != nil {
		logger.Error("Failed to register trigger: %v", err)
		os.Exit(1)
	}
	if err := jobScheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := jobScheduler.Stop(3 * time.Second); err != nil {
			logger.Error("Scheduler shutdown timeout: %v", err)
		}
	}()
	logger.Info("Task scheduler initialized (tick every %ds)", cfg.Scheduler.TickSec)

	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	apiServer := httpapi.NewServer(cfg.Server.Port, service, verifier)
	apiServer.SetStatusProvider(func(context.Context) map[string]interface{} {
		jobs := make([]map[string]interface{}, 0)
		for _, st := range jobScheduler.Snapshot() {
			jobs = append(jobs, map[string]interface{}{
				"name":       st.Name,
				"runs":       st.Runs,
				"last_start": st.LastStartAt,
				"last_error": st.LastError,
			})
		}
		return map[string]interface{}{"scheduler_jobs": jobs}
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(ctx); err != nil {
			serverErr <- err
		}
	}()

	logger.Info("TrendPulse is ready on port %d", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Received signal: %v. Shutting down...", sig)
	case err := <-serverErr:
		logger.Error("HTTP server crashed: %v. Shutting down...", err)
	}
	cancel()
}
