package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/taskscout/internal/config"
	"github.com/gosuda/taskscout/internal/logscan"
	"github.com/gosuda/taskscout/internal/notify"
	"github.com/gosuda/taskscout/internal/server"
	redisstore "github.com/gosuda/taskscout/internal/store/redis"
	"github.com/gosuda/taskscout/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("TASKSCOUT_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("TASKSCOUT_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The query side: stateless searcher over the log tree.
	searcher := logscan.NewSearcher(cfg.LogRoot)

	// The sync side: cache querier, content client, dumper.
	var querier syncer.RowQuerier
	if cfg.Cache.Mode == "redis" {
		cache, cacheErr := redisstore.New(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if cacheErr != nil {
			return cacheErr
		}
		defer cache.Close()
		querier = cache
	} else {
		querier = syncer.NewCLIQuerier(cfg.Cache.QueryCommand, cfg.Cache.QueryArgs...)
	}

	filters := syncer.Filters{
		EngineerID: cfg.Sync.EngineerID,
		Host:       cfg.Sync.Host,
		Source:     cfg.Sync.Source,
		Limit:      cfg.Sync.Limit,
	}

	// Credential resolution is deferred into the run function so a missing
	// key fails each sync attempt before any remote I/O instead of
	// blocking query-only deployments at startup.
	runSync := func(runCtx context.Context) error {
		apiKey, keyErr := cfg.Context.ResolveAPIKey()
		if keyErr != nil {
			return keyErr
		}

		dumper := syncer.NewDumper(
			syncer.NewContextClient(cfg.Context.BaseURL, apiKey),
			syncer.DumperOptions{
				OutDir:    cfg.Sync.OutDir,
				RawOutput: cfg.Sync.RawOutput,
				Workers:   cfg.Sync.Workers,
			},
		)
		return syncer.New(querier, dumper, filters, cfg.Sync.DryRun).Run(runCtx)
	}

	coordinator := syncer.NewCoordinator(runSync)

	// Optional Slack notifications for sync outcomes.
	if cfg.Slack.BotToken != "" && cfg.Slack.Channel != "" {
		notifier := notify.NewSlackNotifier(slacklib.New(cfg.Slack.BotToken), cfg.Slack.Channel)
		coordinator.OnDone(notifier.SyncFinished)
		log.Info().Str("channel", cfg.Slack.Channel).Msg("Slack sync notifications enabled")
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Optional periodic sync.
	if cfg.Sync.Interval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Sync.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					coordinator.Enqueue()
				case <-ctx.Done():
					return
				}
			}
		}()
		log.Info().Dur("interval", cfg.Sync.Interval).Msg("periodic sync enabled")
	}

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, searcher, coordinator)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("logRoot", cfg.LogRoot).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
