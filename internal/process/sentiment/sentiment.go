// Package sentiment scores unscored posts of a topic through an injected
// classifier. Posts are scored at most once; a post's record is never
// rewritten.
package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/observability"
)

const (
	defaultMinTextRunes = 3
	defaultBatchLimit   = 500
)

// Scorer classifies one text.
type Scorer interface {
	Predict(ctx context.Context, text string) (domain.Prediction, error)
}

// Repository is the storage surface the stage needs.
type Repository interface {
	UnscoredPosts(ctx context.Context, topicID int64, limit int) ([]domain.Post, error)
	InsertSentimentRecord(ctx context.Context, rec domain.SentimentRecord) (bool, error)
}

// Stage runs sentiment scoring for a topic.
type Stage struct {
	repo         Repository
	scorer       Scorer
	minTextRunes int
	batchLimit   int
	now          func() time.Time
	logger       *zerolog.Logger
}

// Option customizes a Stage.
type Option func(*Stage)

// WithMinTextRunes overrides the minimum candidate text length.
func WithMinTextRunes(n int) Option {
	return func(s *Stage) {
		if n > 0 {
			s.minTextRunes = n
		}
	}
}

// WithBatchLimit overrides how many unscored posts one Score call handles.
func WithBatchLimit(n int) Option {
	return func(s *Stage) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Stage) {
		s.now = now
	}
}

func New(repo Repository, scorer Scorer, logger *zerolog.Logger, opts ...Option) *Stage {
	stage := &Stage{
		repo:         repo,
		scorer:       scorer,
		minTextRunes: defaultMinTextRunes,
		batchLimit:   defaultBatchLimit,
		now:          time.Now,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(stage)
	}

	return stage
}

// Score classifies the topic's unscored posts and returns how many records
// were written. Candidate text prefers the comment text and falls back to
// the post content; too-short texts are skipped. A scorer failure on one
// post is logged and skipped, it never aborts the batch.
func (s *Stage) Score(ctx context.Context, topicID int64) (int, error) {
	posts, err := s.repo.UnscoredPosts(ctx, topicID, s.batchLimit)
	if err != nil {
		return 0, fmt.Errorf("load unscored posts: %w", err)
	}

	scored := 0

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return scored, fmt.Errorf("scoring interrupted: %w", err)
		}

		text := post.CommentText
		if text == "" {
			text = post.Content
		}

		if len([]rune(text)) < s.minTextRunes {
			continue
		}

		prediction, err := s.scorer.Predict(ctx, text)
		if err != nil {
			s.logger.Warn().Err(err).Int64("post_id", post.ID).Msg("scorer failed for post")

			continue
		}

		inserted, err := s.repo.InsertSentimentRecord(ctx, domain.SentimentRecord{
			PostID:     post.ID,
			Label:      prediction.Label,
			Score:      prediction.Score,
			Intensity:  prediction.Intensity,
			AnalyzedAt: s.now(),
		})
		if err != nil {
			return scored, fmt.Errorf("insert sentiment record: %w", err)
		}

		if inserted {
			scored++

			observability.SentimentsScored.WithLabelValues(prediction.Label).Inc()
		}
	}

	return scored, nil
}
