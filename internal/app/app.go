// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Serve mode: health/metrics server, pipeline JSON API and optional
//     scheduled pipeline runs
//   - Run mode: one pipeline pass, then exit
//   - Process mode: keyword extraction and sentiment scoring for one topic
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/crawler"
	"github.com/3190735983/weibo-sentiment-platform/internal/httpapi"
	"github.com/3190735983/weibo-sentiment-platform/internal/insight"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/config"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/observability"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/worker"
	"github.com/3190735983/weibo-sentiment-platform/internal/process/ingest"
	"github.com/3190735983/weibo-sentiment-platform/internal/process/keywords"
	"github.com/3190735983/weibo-sentiment-platform/internal/process/pipeline"
	"github.com/3190735983/weibo-sentiment-platform/internal/process/sentiment"
	db "github.com/3190735983/weibo-sentiment-platform/internal/storage"
)

// Compile-time checks that the storage layer satisfies every consumer interface.
var (
	_ ingest.Repository       = (*db.DB)(nil)
	_ keywords.Repository     = (*db.DB)(nil)
	_ sentiment.Repository    = (*db.DB)(nil)
	_ pipeline.Repository     = (*db.DB)(nil)
	_ httpapi.Orchestrator    = (*pipeline.Pipeline)(nil)
	_ pipeline.Source         = (*crawler.StoreReader)(nil)
	_ pipeline.Source         = (*crawler.KafkaSource)(nil)
	_ pipeline.Discoverer     = (*crawler.ControlClient)(nil)
	_ pipeline.SentimentStage = (*sentiment.Stage)(nil)
	_ insight.Repository      = (*db.DB)(nil)
	_ httpapi.Reporter        = (*insight.Reporter)(nil)
)

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// ingestorAdapter bridges the ingest package's result struct to the
// orchestrator's counter pair.
type ingestorAdapter struct {
	ingestor *ingest.Ingestor
}

func (a ingestorAdapter) Ingest(ctx context.Context, records []domain.RawRecord) (int, int, error) {
	res, err := a.ingestor.Ingest(ctx, records)

	return res.Added, res.Skipped, err
}

// noopDiscoverer stands in when no crawler control endpoint is configured.
type noopDiscoverer struct{}

func (noopDiscoverer) HotTopics(_ context.Context, _ int) ([]domain.Topic, error) {
	return nil, nil
}

func (noopDiscoverer) SetKeywords(_ context.Context, _ []string) error {
	return nil
}

// emptySource stands in when neither a crawler store nor Kafka is configured.
type emptySource struct{}

func (emptySource) Fetch(_ context.Context, _ string, _ int) ([]domain.RawRecord, error) {
	return nil, nil
}

func (a *App) newPipeline() (*pipeline.Pipeline, func(), error) {
	closers := make([]func(), 0, 2)

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	var source pipeline.Source = emptySource{}

	switch {
	case a.cfg.CrawlerStorePath != "":
		reader, err := crawler.OpenStore(a.cfg.CrawlerStorePath)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open crawler store: %w", err)
		}

		closers = append(closers, func() { _ = reader.Close() })
		source = reader
	case len(a.cfg.KafkaBrokers) > 0:
		kafkaSource := crawler.NewKafkaSource(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, a.cfg.KafkaGroupID, a.logger)
		closers = append(closers, func() { _ = kafkaSource.Close() })
		source = kafkaSource
	default:
		a.logger.Warn().Msg("no crawler source configured, ingest step will see no records")
	}

	var discoverer pipeline.Discoverer = noopDiscoverer{}
	if a.cfg.CrawlerControlURL != "" {
		discoverer = crawler.NewControlClient(a.cfg.CrawlerControlURL, a.cfg.CrawlerControlTimeout, a.cfg.CrawlerBlockedTerms)
	}

	ingestor := ingest.New(a.database, a.logger, ingest.WithBatchSize(a.cfg.IngestBatchSize))
	extractor := keywords.New(a.database, a.logger)
	scorer := sentiment.NewHTTPScorer(a.cfg.ScorerURL, a.cfg.ScorerTimeout, a.cfg.ScorerRPS)
	stage := sentiment.New(a.database, scorer, a.logger, sentiment.WithMinTextRunes(a.cfg.MinTextRunes))

	return pipeline.New(
		a.database,
		source,
		discoverer,
		ingestorAdapter{ingestor: ingestor},
		extractor,
		stage,
		a.logger,
	), cleanup, nil
}

// RunServe runs the serve mode: API plus optional scheduled pipeline runs.
func (a *App) RunServe(ctx context.Context) error {
	a.logger.Info().Msg("Starting serve mode")

	orchestrator, cleanup, err := a.newPipeline()
	if err != nil {
		return err
	}
	defer cleanup()

	var reporter httpapi.Reporter
	if a.cfg.LLMAPIKey != "" {
		reporter = insight.New(a.database, a.cfg.LLMAPIKey, a.cfg.LLMModel, a.logger)
		a.logger.Info().Str("model", a.cfg.LLMModel).Msg("insight reporter enabled")
	}

	apiHandler := httpapi.NewHandler(orchestrator, a.database, reporter, a.logger)
	srv := observability.NewServerWithAPI(a.database, a.cfg.HealthPort, apiHandler, a.logger)

	if a.cfg.PipelineInterval > 0 {
		go a.runScheduled(ctx, orchestrator)
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server start: %w", err)
	}

	return nil
}

func (a *App) runScheduled(ctx context.Context, orchestrator *pipeline.Pipeline) {
	defer worker.RecoverPanic(a.logger, "scheduled pipeline")

	err := worker.Loop(ctx, worker.Config{
		Name:         "pipeline",
		PollInterval: a.cfg.PipelineInterval,
		Logger:       a.logger,
		Process: func(ctx context.Context) error {
			_, err := orchestrator.Run(ctx, pipeline.Params{Mode: a.cfg.PipelineMode, Limit: a.cfg.FetchLimit})
			if errors.Is(err, pipeline.ErrPipelineBusy) {
				// An API-triggered run is in flight; try again next tick.
				return nil
			}

			return err
		},
		OnError: func(err error) bool {
			a.logger.Error().Err(err).Msg("scheduled pipeline run failed")

			return true
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Msg("scheduled pipeline loop exited")
	}
}

// RunOnce executes a single pipeline pass and returns its result.
func (a *App) RunOnce(ctx context.Context, mode, keyword string, limit int) (*pipeline.RunResult, error) {
	orchestrator, cleanup, err := a.newPipeline()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return orchestrator.Run(ctx, pipeline.Params{Mode: mode, Keyword: keyword, Limit: limit})
}

// RunProcess runs keyword extraction and sentiment scoring for one topic.
func (a *App) RunProcess(ctx context.Context, topicID int64) (*pipeline.RunResult, error) {
	if _, err := a.database.GetTopic(ctx, topicID); err != nil {
		return nil, fmt.Errorf("load topic %d: %w", topicID, err)
	}

	orchestrator, cleanup, err := a.newPipeline()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return orchestrator.ProcessTopic(ctx, topicID)
}
