// Package ingest consumes raw crawler records and turns them into canonical
// posts: deduplication by external id, topic resolution over the active-topic
// snapshot, lenient field parsing and batched persistence.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/observability"
	"github.com/3190735983/weibo-sentiment-platform/internal/process/resolver"
)

const defaultBatchSize = 10

// Repository is the storage surface the ingestor needs.
type Repository interface {
	ActiveTopics(ctx context.Context) ([]domain.Topic, error)
	PostExists(ctx context.Context, externalID string) (bool, error)
	InsertPosts(ctx context.Context, posts []domain.Post) (int, error)
}

// Result summarizes one ingestion call.
type Result struct {
	Added   int
	Skipped int
}

// Ingestor deduplicates and persists raw records.
type Ingestor struct {
	repo      Repository
	resolver  *resolver.Resolver
	batchSize int
	now       func() time.Time
	logger    *zerolog.Logger
}

// Option customizes an Ingestor.
type Option func(*Ingestor)

// WithBatchSize overrides the flush threshold for staged posts.
func WithBatchSize(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) {
		i.now = now
	}
}

func New(repo Repository, logger *zerolog.Logger, opts ...Option) *Ingestor {
	ing := &Ingestor{
		repo:      repo,
		resolver:  resolver.New(),
		batchSize: defaultBatchSize,
		now:       time.Now,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(ing)
	}

	return ing
}

// Ingest processes records in order. Records with an empty external id or
// content, records whose external id already exists, and records that resolve
// to no topic are skipped and counted, never errored. Staged posts are
// flushed every batchSize records and once more at the end.
func (i *Ingestor) Ingest(ctx context.Context, records []domain.RawRecord) (Result, error) {
	var res Result

	if len(records) == 0 {
		return res, nil
	}

	topics, err := i.repo.ActiveTopics(ctx)
	if err != nil {
		return res, fmt.Errorf("load active topics: %w", err)
	}

	staged := make([]domain.Post, 0, i.batchSize)

	flush := func() error {
		if len(staged) == 0 {
			return nil
		}

		added, err := i.repo.InsertPosts(ctx, staged)
		if err != nil {
			return fmt.Errorf("insert posts: %w", err)
		}

		// Inserts racing another run resolve via the unique external id;
		// rows lost to the race count as skipped.
		res.Added += added
		res.Skipped += len(staged) - added
		staged = staged[:0]

		return nil
	}

	for _, record := range records {
		if record.ExternalID == "" || record.Content == "" {
			res.Skipped++
			observability.RecordsSkipped.WithLabelValues(skipReasonInvalid).Inc()

			continue
		}

		exists, err := i.repo.PostExists(ctx, record.ExternalID)
		if err != nil {
			return res, fmt.Errorf("check duplicate %s: %w", record.ExternalID, err)
		}

		if exists {
			res.Skipped++
			observability.RecordsSkipped.WithLabelValues(skipReasonDuplicate).Inc()

			continue
		}

		topic := i.resolver.Resolve(record.Content, record.SourceKeyword, topics)
		if topic == nil {
			res.Skipped++
			observability.RecordsSkipped.WithLabelValues(skipReasonNoTopic).Inc()

			i.logger.Debug().Str("external_id", record.ExternalID).Msg("no topic for record")

			continue
		}

		staged = append(staged, i.buildPost(record, topic.ID))

		if len(staged) >= i.batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}

	if err := flush(); err != nil {
		return res, err
	}

	observability.PostsIngested.Add(float64(res.Added))

	return res, nil
}

func (i *Ingestor) buildPost(record domain.RawRecord, topicID int64) domain.Post {
	return domain.Post{
		TopicID:       topicID,
		ExternalID:    record.ExternalID,
		Content:       record.Content,
		CommentText:   record.CommentText,
		AuthorName:    record.AuthorName,
		SourceKeyword: record.SourceKeyword,
		LikesCount:    ParseCount(record.LikesCount),
		SharesCount:   ParseCount(record.SharesCount),
		CommentsCount: ParseCount(record.CommentsCount),
		PublishTime:   ParseTimestamp(record.Timestamp, i.now),
	}
}
