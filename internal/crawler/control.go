package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

const (
	hotTopicsPath = "/api/hot_topics"
	keywordsPath  = "/api/keywords"
)

// ControlClient talks to the crawler service's control API: it pulls hot
// topic candidates and hands over the keyword list for the next crawl.
// Keywords travel over the API only; the crawler's own configuration is
// never touched from here.
type ControlClient struct {
	baseURL string
	client  *http.Client
	blocked []string
}

// NewControlClient creates a control client. blockedTerms filters discovered
// topic names; a candidate containing any term is dropped.
func NewControlClient(baseURL string, timeout time.Duration, blockedTerms []string) *ControlClient {
	return &ControlClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		blocked: blockedTerms,
	}
}

type hotTopicsResponse struct {
	Topics []struct {
		Name string `json:"name"`
		Tag  string `json:"tag"`
	} `json:"topics"`
}

// HotTopics returns up to limit discovered topic candidates, with blocked
// names filtered out. A candidate without a tag gets one derived from its
// name.
func (c *ControlClient) HotTopics(ctx context.Context, limit int) ([]domain.Topic, error) {
	url := fmt.Sprintf("%s%s?limit=%d", c.baseURL, hotTopicsPath, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build hot topics request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hot topics request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hot topics request: unexpected status %d", resp.StatusCode)
	}

	var payload hotTopicsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode hot topics response: %w", err)
	}

	topics := make([]domain.Topic, 0, len(payload.Topics))

	for _, candidate := range payload.Topics {
		if candidate.Name == "" || c.isBlocked(candidate.Name) {
			continue
		}

		tag := candidate.Tag
		if tag == "" {
			tag = "#" + candidate.Name + "#"
		}

		topics = append(topics, domain.Topic{Name: candidate.Name, Tag: tag})

		if len(topics) >= limit {
			break
		}
	}

	return topics, nil
}

// SetKeywords replaces the crawler's keyword list.
func (c *ControlClient) SetKeywords(ctx context.Context, keywords []string) error {
	body, err := json.Marshal(map[string][]string{"keywords": keywords})
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+keywordsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build keywords request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("keywords request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("keywords request: unexpected status %d", resp.StatusCode)
	}

	return nil
}

func (c *ControlClient) isBlocked(name string) bool {
	for _, term := range c.blocked {
		if term != "" && strings.Contains(name, term) {
			return true
		}
	}

	return false
}
