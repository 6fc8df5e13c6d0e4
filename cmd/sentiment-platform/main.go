package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/3190735983/weibo-sentiment-platform/internal/app"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/config"
	"github.com/3190735983/weibo-sentiment-platform/internal/process/pipeline"
	db "github.com/3190735983/weibo-sentiment-platform/internal/storage"
)

func main() {
	mode := flag.String("mode", "serve", "Service mode (serve, run, process)")
	runMode := flag.String("run-mode", pipeline.ModeDiscover, "Pipeline mode for --mode=run (discover, search)")
	keyword := flag.String("keyword", "", "Search keyword for --run-mode=search")
	limit := flag.Int("limit", 0, "Raw record fetch limit for --mode=run")
	topicID := flag.Int64("topic", 0, "Topic id for --mode=process")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := db.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application := app.New(cfg, database, &logger)

	if err := run(ctx, application, &logger, *mode, *runMode, *keyword, *limit, *topicID); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func run(ctx context.Context, application *app.App, logger *zerolog.Logger, mode, runMode, keyword string, limit int, topicID int64) error {
	switch mode {
	case "serve":
		return application.RunServe(ctx)
	case "run":
		result, err := application.RunOnce(ctx, runMode, keyword, limit)
		if err != nil {
			return err
		}

		printResult(logger, result)

		return nil
	case "process":
		if topicID <= 0 {
			return fmt.Errorf("--mode=process requires --topic")
		}

		result, err := application.RunProcess(ctx, topicID)
		if err != nil {
			return err
		}

		printResult(logger, result)

		return nil
	default:
		log.Fatalf("Usage: %s --mode=[serve|run|process]", os.Args[0])

		return nil
	}
}

func printResult(logger *zerolog.Logger, result *pipeline.RunResult) {
	event := logger.Info().
		Int("topics_added", result.TopicsAdded).
		Int("posts_synced", result.PostsSynced).
		Int("keywords_extracted", result.KeywordsExtracted).
		Int("sentiments_analyzed", result.SentimentsAnalyzed)

	if len(result.Errors) > 0 {
		event = event.Strs("errors", result.Errors)
	}

	event.Msg(result.Message)
}
