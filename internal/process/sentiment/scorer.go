package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/observability"
)

const predictPath = "/predict"

// HTTPScorer calls the external classifier service. Requests are rate
// limited so batch scoring cannot overload the model server.
type HTTPScorer struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPScorer creates a scorer client. rps bounds outgoing requests per
// second; zero or negative disables limiting.
func NewHTTPScorer(baseURL string, timeout time.Duration, rps float64) *HTTPScorer {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &HTTPScorer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

// Predict sends one text to the classifier and returns its prediction.
func (s *HTTPScorer) Predict(ctx context.Context, text string) (domain.Prediction, error) {
	var prediction domain.Prediction

	if err := s.limiter.Wait(ctx); err != nil {
		return prediction, fmt.Errorf("scorer rate limit: %w", err)
	}

	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return prediction, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return prediction, fmt.Errorf("build predict request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := s.client.Do(req)

	observability.ScorerRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.ScorerErrors.Inc()

		return prediction, fmt.Errorf("predict request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		observability.ScorerErrors.Inc()

		return prediction, fmt.Errorf("predict request: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		observability.ScorerErrors.Inc()

		return prediction, fmt.Errorf("decode predict response: %w", err)
	}

	return prediction, nil
}
