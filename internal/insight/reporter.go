// Package insight generates a short analyst report for a topic from its
// keyword signals and sentiment distribution, via an OpenAI-compatible model.
// The reporter is an optional collaborator: the pipeline works without it.
package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

const (
	keywordLimit  = 20
	maxTokens     = 800
	systemMessage = "你是一名舆情分析师。根据给出的话题关键词和情感分布，写一段简明的中文分析报告。"
)

// Repository is the storage surface the reporter needs.
type Repository interface {
	GetTopic(ctx context.Context, id int64) (*domain.Topic, error)
	LatestKeywordSignals(ctx context.Context, topicID int64, limit int) ([]domain.KeywordSignal, error)
	SentimentDistribution(ctx context.Context, topicID int64) (map[string]int, error)
}

// Reporter builds topic reports.
type Reporter struct {
	repo   Repository
	client *openai.Client
	model  string
	logger *zerolog.Logger
}

func New(repo Repository, apiKey, model string, logger *zerolog.Logger) *Reporter {
	return &Reporter{
		repo:   repo,
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// GenerateReport produces a report for one topic.
func (r *Reporter) GenerateReport(ctx context.Context, topicID int64) (string, error) {
	topic, err := r.repo.GetTopic(ctx, topicID)
	if err != nil {
		return "", fmt.Errorf("load topic: %w", err)
	}

	signals, err := r.repo.LatestKeywordSignals(ctx, topicID, keywordLimit)
	if err != nil {
		return "", fmt.Errorf("load keyword signals: %w", err)
	}

	distribution, err := r.repo.SentimentDistribution(ctx, topicID)
	if err != nil {
		return "", fmt.Errorf("load sentiment distribution: %w", err)
	}

	prompt := buildPrompt(topic, signals, distribution)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     r.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	r.logger.Debug().Int64("topic_id", topicID).Int("prompt_len", len(prompt)).Msg("report generated")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(topic *domain.Topic, signals []domain.KeywordSignal, distribution map[string]int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "话题：%s\n", topic.Name)

	if len(signals) > 0 {
		b.WriteString("热门关键词：")

		for i, s := range signals {
			if i > 0 {
				b.WriteString("、")
			}

			fmt.Fprintf(&b, "%s(%d)", s.Keyword, s.Frequency)
		}

		b.WriteString("\n")
	}

	if len(distribution) > 0 {
		b.WriteString("情感分布：")

		for label, count := range distribution {
			fmt.Fprintf(&b, "%s=%d ", label, count)
		}

		b.WriteString("\n")
	}

	return b.String()
}
