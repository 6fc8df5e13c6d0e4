// Package pipeline orchestrates the full analysis run: topic discovery, raw
// record ingestion, keyword extraction and sentiment scoring. Only one run
// may be in flight per process.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/observability"
)

// Run modes.
const (
	ModeDiscover = "discover"
	ModeSearch   = "search"
)

const defaultFetchLimit = 200

// Sentinel errors surfaced to API callers.
var (
	ErrPipelineBusy    = errors.New("pipeline already running")
	ErrKeywordRequired = errors.New("search mode requires a keyword")
	ErrUnknownMode     = errors.New("unknown pipeline mode")
)

// Repository is the storage surface the orchestrator needs.
type Repository interface {
	ActiveTopics(ctx context.Context) ([]domain.Topic, error)
	UpsertTopic(ctx context.Context, name, tag string) (int64, bool, error)
}

// Source supplies raw crawler records for one run.
type Source interface {
	Fetch(ctx context.Context, keyword string, limit int) ([]domain.RawRecord, error)
}

// Discoverer supplies hot topic candidates and pushes crawl keywords.
type Discoverer interface {
	HotTopics(ctx context.Context, limit int) ([]domain.Topic, error)
	SetKeywords(ctx context.Context, keywords []string) error
}

// Ingestor deduplicates and persists raw records.
type Ingestor interface {
	Ingest(ctx context.Context, records []domain.RawRecord) (added, skipped int, err error)
}

// KeywordExtractor derives keyword signals for one topic.
type KeywordExtractor interface {
	Extract(ctx context.Context, topicID int64, method string, topN int, timePeriod string) (int, error)
}

// SentimentStage scores unscored posts for one topic.
type SentimentStage interface {
	Score(ctx context.Context, topicID int64) (int, error)
}

// Params selects what a run does.
type Params struct {
	Mode    string
	Keyword string
	Limit   int
	Steps   Steps
}

// Steps toggles individual stages; the zero value runs everything.
type Steps struct {
	SkipDiscovery bool
	SkipIngest    bool
	SkipKeywords  bool
	SkipSentiment bool
}

// RunResult aggregates counters and per-step errors for one run.
type RunResult struct {
	TopicsAdded        int      `json:"topics_added"`
	PostsSynced        int      `json:"posts_synced"`
	KeywordsExtracted  int      `json:"keywords_extracted"`
	SentimentsAnalyzed int      `json:"sentiments_analyzed"`
	Errors             []string `json:"errors"`
	Message            string   `json:"message"`
}

// Status reports whether a run is in flight.
type Status struct {
	IsRunning bool `json:"is_running"`
}

// Pipeline is the single-flight orchestrator.
type Pipeline struct {
	repo       Repository
	source     Source
	discoverer Discoverer
	ingestor   Ingestor
	keywords   KeywordExtractor
	sentiment  SentimentStage
	running    atomic.Bool
	logger     *zerolog.Logger
}

func New(
	repo Repository,
	source Source,
	discoverer Discoverer,
	ingestor Ingestor,
	keywords KeywordExtractor,
	sentiment SentimentStage,
	logger *zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		repo:       repo,
		source:     source,
		discoverer: discoverer,
		ingestor:   ingestor,
		keywords:   keywords,
		sentiment:  sentiment,
		logger:     logger,
	}
}

// Run executes one pipeline pass. Invalid params fail before the busy check;
// a concurrent run returns ErrPipelineBusy with no side effects. Step
// failures are collected into the result and later steps still execute.
func (p *Pipeline) Run(ctx context.Context, params Params) (*RunResult, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrPipelineBusy
	}

	defer func() {
		p.running.Store(false)
		observability.PipelineRunning.Set(0)
	}()

	observability.PipelineRunning.Set(1)

	runID := uuid.NewString()
	logger := p.logger.With().Str("run_id", runID).Str("mode", params.Mode).Logger()
	logger.Info().Msg("pipeline run started")

	result := &RunResult{}

	if params.Mode == ModeDiscover && !params.Steps.SkipDiscovery {
		p.runStep(ctx, &logger, result, stepDiscovery, func(ctx context.Context) error {
			return p.discover(ctx, result)
		})
	}

	if !params.Steps.SkipIngest {
		p.runStep(ctx, &logger, result, stepIngest, func(ctx context.Context) error {
			return p.ingest(ctx, params, result)
		})
	}

	if !params.Steps.SkipKeywords {
		p.runStep(ctx, &logger, result, stepKeywords, func(ctx context.Context) error {
			return p.extractAll(ctx, &logger, result)
		})
	}

	if !params.Steps.SkipSentiment {
		p.runStep(ctx, &logger, result, stepSentiment, func(ctx context.Context) error {
			return p.scoreAll(ctx, &logger, result)
		})
	}

	status := statusCompleted
	if len(result.Errors) > 0 {
		status = statusPartial
	}

	result.Message = fmt.Sprintf("pipeline %s: %d topics added, %d posts synced, %d keywords, %d sentiments",
		status, result.TopicsAdded, result.PostsSynced, result.KeywordsExtracted, result.SentimentsAnalyzed)

	observability.PipelineRuns.WithLabelValues(status).Inc()
	logger.Info().
		Int("topics_added", result.TopicsAdded).
		Int("posts_synced", result.PostsSynced).
		Int("keywords_extracted", result.KeywordsExtracted).
		Int("sentiments_analyzed", result.SentimentsAnalyzed).
		Int("errors", len(result.Errors)).
		Msg("pipeline run finished")

	return result, nil
}

// ProcessTopic runs keyword extraction and sentiment scoring for one topic.
// It shares the single-flight guard with Run.
func (p *Pipeline) ProcessTopic(ctx context.Context, topicID int64) (*RunResult, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrPipelineBusy
	}

	defer p.running.Store(false)

	logger := p.logger.With().Str("run_id", uuid.NewString()).Int64("topic_id", topicID).Logger()
	result := &RunResult{}

	extracted, err := p.keywords.Extract(ctx, topicID, "", 0, "")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("keywords: %v", err))
	}

	result.KeywordsExtracted = extracted

	scored, err := p.sentiment.Score(ctx, topicID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("sentiment: %v", err))
	}

	result.SentimentsAnalyzed = scored
	result.Message = fmt.Sprintf("topic processed: %d keywords, %d sentiments", extracted, scored)

	logger.Info().Int("keywords", extracted).Int("sentiments", scored).Msg("topic processed")

	return result, nil
}

// Status returns whether a run is currently in flight.
func (p *Pipeline) Status() Status {
	return Status{IsRunning: p.running.Load()}
}

func validate(params Params) error {
	switch params.Mode {
	case ModeDiscover:
		return nil
	case ModeSearch:
		if params.Keyword == "" {
			return ErrKeywordRequired
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, params.Mode)
	}
}

func (p *Pipeline) runStep(ctx context.Context, logger *zerolog.Logger, result *RunResult, step string, fn func(ctx context.Context) error) {
	start := time.Now()

	err := fn(ctx)

	observability.PipelineStepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error().Err(err).Str("step", step).Msg("pipeline step failed")
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", step, err))
	}
}

func (p *Pipeline) discover(ctx context.Context, result *RunResult) error {
	candidates, err := p.discoverer.HotTopics(ctx, defaultHotTopicLimit)
	if err != nil {
		return fmt.Errorf("fetch hot topics: %w", err)
	}

	keywords := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		_, created, err := p.repo.UpsertTopic(ctx, candidate.Name, candidate.Tag)
		if err != nil {
			return fmt.Errorf("upsert topic %q: %w", candidate.Tag, err)
		}

		if created {
			result.TopicsAdded++
		}

		keywords = append(keywords, candidate.Name)
	}

	if len(keywords) == 0 {
		return nil
	}

	if err := p.discoverer.SetKeywords(ctx, keywords); err != nil {
		return fmt.Errorf("push crawl keywords: %w", err)
	}

	return nil
}

func (p *Pipeline) ingest(ctx context.Context, params Params, result *RunResult) error {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	if params.Mode == ModeSearch {
		if err := p.discoverer.SetKeywords(ctx, []string{params.Keyword}); err != nil {
			return fmt.Errorf("push search keyword: %w", err)
		}
	}

	records, err := p.source.Fetch(ctx, params.Keyword, limit)
	if err != nil {
		return fmt.Errorf("fetch raw records: %w", err)
	}

	added, _, err := p.ingestor.Ingest(ctx, records)
	if err != nil {
		return fmt.Errorf("ingest records: %w", err)
	}

	result.PostsSynced = added

	return nil
}

func (p *Pipeline) extractAll(ctx context.Context, logger *zerolog.Logger, result *RunResult) error {
	topics, err := p.repo.ActiveTopics(ctx)
	if err != nil {
		return fmt.Errorf("load active topics: %w", err)
	}

	for _, topic := range topics {
		extracted, err := p.keywords.Extract(ctx, topic.ID, "", 0, "")
		if err != nil {
			logger.Error().Err(err).Int64("topic_id", topic.ID).Msg("keyword extraction failed")
			result.Errors = append(result.Errors, fmt.Sprintf("keywords topic %d: %v", topic.ID, err))

			continue
		}

		result.KeywordsExtracted += extracted
	}

	return nil
}

func (p *Pipeline) scoreAll(ctx context.Context, logger *zerolog.Logger, result *RunResult) error {
	topics, err := p.repo.ActiveTopics(ctx)
	if err != nil {
		return fmt.Errorf("load active topics: %w", err)
	}

	for _, topic := range topics {
		scored, err := p.sentiment.Score(ctx, topic.ID)
		if err != nil {
			logger.Error().Err(err).Int64("topic_id", topic.ID).Msg("sentiment scoring failed")
			result.Errors = append(result.Errors, fmt.Sprintf("sentiment topic %d: %v", topic.ID, err))

			continue
		}

		result.SentimentsAnalyzed += scored
	}

	return nil
}
