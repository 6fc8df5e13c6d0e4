package sentiment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

type mockRepository struct {
	posts    []domain.Post
	records  []domain.SentimentRecord
	scoredID map[int64]bool
}

func (m *mockRepository) UnscoredPosts(_ context.Context, _ int64, _ int) ([]domain.Post, error) {
	return m.posts, nil
}

func (m *mockRepository) InsertSentimentRecord(_ context.Context, rec domain.SentimentRecord) (bool, error) {
	if m.scoredID == nil {
		m.scoredID = make(map[int64]bool)
	}

	if m.scoredID[rec.PostID] {
		return false, nil
	}

	m.scoredID[rec.PostID] = true
	m.records = append(m.records, rec)

	return true, nil
}

type scorerFunc func(ctx context.Context, text string) (domain.Prediction, error)

func (f scorerFunc) Predict(ctx context.Context, text string) (domain.Prediction, error) {
	return f(ctx, text)
}

func positiveScorer() Scorer {
	return scorerFunc(func(_ context.Context, _ string) (domain.Prediction, error) {
		return domain.Prediction{Label: "positive", Score: 0.9, Intensity: 0.7}, nil
	})
}

func newTestStage(repo Repository, scorer Scorer, opts ...Option) *Stage {
	logger := zerolog.Nop()

	return New(repo, scorer, &logger, opts...)
}

func TestScorePrefersCommentText(t *testing.T) {
	var seen []string

	repo := &mockRepository{posts: []domain.Post{
		{ID: 1, Content: "正文内容", CommentText: "评论优先"},
		{ID: 2, Content: "只有正文"},
	}}
	scorer := scorerFunc(func(_ context.Context, text string) (domain.Prediction, error) {
		seen = append(seen, text)

		return domain.Prediction{Label: "neutral", Score: 0.5, Intensity: 0.1}, nil
	})

	n, err := newTestStage(repo, scorer).Score(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"评论优先", "只有正文"}, seen)
}

func TestScoreSkipsShortText(t *testing.T) {
	repo := &mockRepository{posts: []domain.Post{
		{ID: 1, Content: "好"},
		{ID: 2, Content: "不错哦"},
	}}

	n, err := newTestStage(repo, positiveScorer()).Score(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, repo.records, 1)
	assert.EqualValues(t, 2, repo.records[0].PostID)
}

func TestScoreToleratesScorerFailures(t *testing.T) {
	repo := &mockRepository{posts: []domain.Post{
		{ID: 1, Content: "第一条内容"},
		{ID: 2, Content: "第二条内容"},
	}}
	scorer := scorerFunc(func(_ context.Context, text string) (domain.Prediction, error) {
		if text == "第一条内容" {
			return domain.Prediction{}, errors.New("model overloaded")
		}

		return domain.Prediction{Label: "negative", Score: 0.2, Intensity: 0.8}, nil
	})

	n, err := newTestStage(repo, scorer).Score(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestScoreNeverRescores(t *testing.T) {
	repo := &mockRepository{
		posts:    []domain.Post{{ID: 1, Content: "已经评分的内容"}},
		scoredID: map[int64]bool{1: true},
	}

	n, err := newTestStage(repo, positiveScorer()).Score(context.Background(), 1)

	require.NoError(t, err)
	assert.Zero(t, n, "a post with an existing record is not counted again")
	assert.Empty(t, repo.records)
}

func TestHTTPScorerPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"label":"positive","score":0.93,"intensity":0.61}`))
	}))
	defer srv.Close()

	scorer := NewHTTPScorer(srv.URL, 5*time.Second, 0)

	prediction, err := scorer.Predict(context.Background(), "今天很开心")

	require.NoError(t, err)
	assert.Equal(t, "positive", prediction.Label)
	assert.InDelta(t, 0.93, prediction.Score, 1e-9)
	assert.InDelta(t, 0.61, prediction.Intensity, 1e-9)
}

func TestHTTPScorerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPScorer(srv.URL, 5*time.Second, 0).Predict(context.Background(), "文本")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
