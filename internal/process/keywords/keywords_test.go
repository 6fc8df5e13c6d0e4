package keywords

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

type mockRepository struct {
	contents []string
	replaced map[string][]domain.KeywordSignal
}

func (m *mockRepository) TopicContents(_ context.Context, _ int64, _ int) ([]string, error) {
	return m.contents, nil
}

func (m *mockRepository) ReplaceKeywordSignals(_ context.Context, _ int64, timePeriod string, signals []domain.KeywordSignal) error {
	if m.replaced == nil {
		m.replaced = make(map[string][]domain.KeywordSignal)
	}

	m.replaced[timePeriod] = signals

	return nil
}

func newTestExtractor(repo Repository) *Extractor {
	logger := zerolog.Nop()
	e := New(repo, &logger)
	e.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }

	return e
}

func TestExtractUnknownMethod(t *testing.T) {
	_, err := newTestExtractor(&mockRepository{}).Extract(context.Background(), 1, "lda", 10, "")

	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestExtractDefaultPeriodIsToday(t *testing.T) {
	repo := &mockRepository{contents: []string{"世界杯决赛精彩 世界杯决赛"}}

	n, err := newTestExtractor(repo).Extract(context.Background(), 1, MethodTF, 10, "")

	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Contains(t, repo.replaced, "2024-06-01")
}

func TestExtractReplacesNotAccumulates(t *testing.T) {
	repo := &mockRepository{contents: []string{"今天天气不错 天气晴朗"}}
	e := newTestExtractor(repo)

	_, err := e.Extract(context.Background(), 1, MethodTF, 10, "2024-06-01")
	require.NoError(t, err)

	first := len(repo.replaced["2024-06-01"])

	_, err = e.Extract(context.Background(), 1, MethodTF, 10, "2024-06-01")
	require.NoError(t, err)

	// A second run hands the repository a complete fresh set, same size.
	assert.Len(t, repo.replaced["2024-06-01"], first)
}

func TestExtractTopNLimit(t *testing.T) {
	repo := &mockRepository{contents: []string{
		"世界杯决赛精彩进球庆祝球迷狂欢现场气氛热烈",
	}}

	n, err := newTestExtractor(repo).Extract(context.Background(), 1, MethodTFIDF, 3, "2024-06-01")

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, repo.replaced["2024-06-01"], 3)
}

func TestExtractEmptyCorpus(t *testing.T) {
	repo := &mockRepository{}

	n, err := newTestExtractor(repo).Extract(context.Background(), 1, MethodTFIDF, 10, "2024-06-01")

	require.NoError(t, err)
	assert.Zero(t, n)
	// The empty set still replaces whatever was stored for the period.
	assert.Contains(t, repo.replaced, "2024-06-01")
}

func TestTermFrequencyWeights(t *testing.T) {
	scored := termFrequency([][]string{{"天气", "天气", "晴朗"}})

	require.Len(t, scored, 2)
	assert.Equal(t, "天气", scored[0].term)
	assert.Equal(t, 2, scored[0].frequency)
	assert.InDelta(t, 2.0/3.0, scored[0].weight, 1e-9)
}

func TestTFIDFSumsAcrossDocuments(t *testing.T) {
	docs := [][]string{
		{"天气", "决赛"},
		{"天气", "出门"},
		{"天气", "散步"},
	}

	scored := tfidf(docs)

	require.Len(t, scored, 4)

	rank := make(map[string]int, len(scored))
	weights := make(map[string]float64, len(scored))

	for i, s := range scored {
		rank[s.term] = i
		weights[s.term] = s.weight
	}

	// Scores are summed over documents, so the term present in all three
	// accumulates the highest total even though its idf is the lowest.
	assert.Zero(t, rank["天气"])
	assert.Equal(t, 3, scored[0].frequency, "frequency stays the raw corpus count")

	// Within one document the rarer term carries the larger share: each
	// single-document term outweighs one appearance of the common term.
	perDocCommon := weights["天气"] / 3

	assert.Greater(t, weights["决赛"], perDocCommon)
}

func TestTFIDFEmptyDocs(t *testing.T) {
	assert.Nil(t, tfidf(nil))
	assert.Nil(t, termFrequency([][]string{{}}))
}
