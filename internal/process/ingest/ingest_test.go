package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

type mockRepository struct {
	topics      []domain.Topic
	topicsErr   error
	existing    map[string]bool
	inserted    []domain.Post
	insertCalls int
}

func (m *mockRepository) ActiveTopics(_ context.Context) ([]domain.Topic, error) {
	return m.topics, m.topicsErr
}

func (m *mockRepository) PostExists(_ context.Context, externalID string) (bool, error) {
	return m.existing[externalID], nil
}

func (m *mockRepository) InsertPosts(_ context.Context, posts []domain.Post) (int, error) {
	m.insertCalls++
	m.inserted = append(m.inserted, posts...)

	return len(posts), nil
}

func newTestIngestor(repo Repository, opts ...Option) *Ingestor {
	logger := zerolog.Nop()

	return New(repo, &logger, opts...)
}

func TestIngestEndToEnd(t *testing.T) {
	repo := &mockRepository{
		topics:   []domain.Topic{{ID: 1, Name: "开心一下", Tag: "#开心一下#", IsActive: true}},
		existing: map[string]bool{},
	}
	ing := newTestIngestor(repo, WithClock(fixedNow))

	record := domain.RawRecord{
		ExternalID:    "123",
		Content:       "今天 #开心一下# 真好",
		SourceKeyword: "开心",
		LikesCount:    "1.2万",
		Timestamp:     "1700000000",
	}

	res, err := ing.Ingest(context.Background(), []domain.RawRecord{record})

	require.NoError(t, err)
	assert.Equal(t, Result{Added: 1}, res)
	require.Len(t, repo.inserted, 1)

	post := repo.inserted[0]
	assert.EqualValues(t, 1, post.TopicID)
	assert.Equal(t, "123", post.ExternalID)
	assert.Equal(t, 12000, post.LikesCount)
	assert.Equal(t, int64(1700000000), post.PublishTime.Unix())

	// Re-ingesting the same record adds nothing.
	repo.existing["123"] = true

	res, err = ing.Ingest(context.Background(), []domain.RawRecord{record})

	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)
	assert.Len(t, repo.inserted, 1)
}

func TestIngestSkipsDuplicates(t *testing.T) {
	repo := &mockRepository{
		topics:   []domain.Topic{{ID: 1, Name: "开心一下", Tag: "#开心一下#"}},
		existing: map[string]bool{"123": true},
	}

	res, err := newTestIngestor(repo).Ingest(context.Background(), []domain.RawRecord{
		{ExternalID: "123", Content: "重复内容"},
		{ExternalID: "124", Content: "新内容"},
	})

	require.NoError(t, err)
	assert.Equal(t, Result{Added: 1, Skipped: 1}, res)
}

func TestIngestSkipsInvalidRecords(t *testing.T) {
	repo := &mockRepository{
		topics:   []domain.Topic{{ID: 1, Name: "话题", Tag: "#话题#"}},
		existing: map[string]bool{},
	}

	res, err := newTestIngestor(repo).Ingest(context.Background(), []domain.RawRecord{
		{ExternalID: "", Content: "有内容没有id"},
		{ExternalID: "9", Content: ""},
	})

	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, res)
	assert.Empty(t, repo.inserted)
}

func TestIngestFlushesInBatches(t *testing.T) {
	repo := &mockRepository{
		topics:   []domain.Topic{{ID: 1, Name: "话题", Tag: "#话题#"}},
		existing: map[string]bool{},
	}
	ing := newTestIngestor(repo, WithBatchSize(2))

	records := make([]domain.RawRecord, 5)
	for i := range records {
		records[i] = domain.RawRecord{ExternalID: string(rune('a' + i)), Content: "内容"}
	}

	res, err := ing.Ingest(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 5, res.Added)
	// Two full batches plus the final partial flush.
	assert.Equal(t, 3, repo.insertCalls)
}

func TestIngestTopicsError(t *testing.T) {
	repo := &mockRepository{topicsErr: errors.New("db down")}

	_, err := newTestIngestor(repo).Ingest(context.Background(), []domain.RawRecord{
		{ExternalID: "1", Content: "x"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load active topics")
}

func TestIngestEmptyInput(t *testing.T) {
	repo := &mockRepository{}

	res, err := newTestIngestor(repo).Ingest(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Zero(t, repo.insertCalls)
}
