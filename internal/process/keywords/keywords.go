// Package keywords extracts ranked keyword signals from a topic's post
// corpus, by plain term frequency or TF-IDF, and replaces the stored set for
// the analyzed time period.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/observability"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/textnorm"
)

// Extraction methods.
const (
	MethodTF    = "tf"
	MethodTFIDF = "tfidf"
)

const (
	defaultTopN        = 50
	defaultCorpusLimit = 1000
	periodLayout       = "2006-01-02"
)

// ErrUnknownMethod is returned for an extraction method other than tf or tfidf.
var ErrUnknownMethod = errors.New("unknown extraction method")

// Repository is the storage surface the extractor needs.
type Repository interface {
	TopicContents(ctx context.Context, topicID int64, limit int) ([]string, error)
	ReplaceKeywordSignals(ctx context.Context, topicID int64, timePeriod string, signals []domain.KeywordSignal) error
}

// Extractor derives and persists keyword signals.
type Extractor struct {
	repo        Repository
	corpusLimit int
	now         func() time.Time
	logger      *zerolog.Logger
}

func New(repo Repository, logger *zerolog.Logger) *Extractor {
	return &Extractor{
		repo:        repo,
		corpusLimit: defaultCorpusLimit,
		now:         time.Now,
		logger:      logger,
	}
}

// Extract computes the top keywords for a topic and replaces the stored set
// for the period. An empty method defaults to TF-IDF; an empty period
// defaults to the current date. A corpus whose vocabulary vanishes under
// TF-IDF falls back to plain term frequency. Returns the number of signals
// written.
func (e *Extractor) Extract(ctx context.Context, topicID int64, method string, topN int, timePeriod string) (int, error) {
	if method == "" {
		method = MethodTFIDF
	}

	if method != MethodTF && method != MethodTFIDF {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}

	if topN <= 0 {
		topN = defaultTopN
	}

	if timePeriod == "" {
		timePeriod = e.now().Format(periodLayout)
	}

	contents, err := e.repo.TopicContents(ctx, topicID, e.corpusLimit)
	if err != nil {
		return 0, fmt.Errorf("load topic corpus: %w", err)
	}

	docs := make([][]string, 0, len(contents))

	for _, content := range contents {
		if terms := textnorm.Terms(content); len(terms) > 0 {
			docs = append(docs, terms)
		}
	}

	scored := e.score(docs, method, topicID)
	if len(scored) > topN {
		scored = scored[:topN]
	}

	analyzedAt := e.now()
	signals := make([]domain.KeywordSignal, len(scored))

	for i, s := range scored {
		signals[i] = domain.KeywordSignal{
			TopicID:    topicID,
			Keyword:    s.term,
			Frequency:  s.frequency,
			Weight:     s.weight,
			TimePeriod: timePeriod,
			AnalyzedAt: analyzedAt,
		}
	}

	if err := e.repo.ReplaceKeywordSignals(ctx, topicID, timePeriod, signals); err != nil {
		return 0, fmt.Errorf("replace keyword signals: %w", err)
	}

	observability.KeywordsExtracted.Add(float64(len(signals)))

	return len(signals), nil
}

func (e *Extractor) score(docs [][]string, method string, topicID int64) []scoredTerm {
	if method == MethodTF {
		return termFrequency(docs)
	}

	scored := tfidf(docs)
	if len(scored) == 0 && len(docs) > 0 {
		e.logger.Warn().Int64("topic_id", topicID).Msg("empty tfidf vocabulary, falling back to term frequency")

		return termFrequency(docs)
	}

	return scored
}
