package db

import (
	"context"
	"fmt"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

// ReplaceKeywordSignals atomically swaps the keyword set for a topic and time
// period: previous rows are deleted and the new set inserted in one
// transaction, so readers never observe a mix of two extractions.
func (db *DB) ReplaceKeywordSignals(ctx context.Context, topicID int64, timePeriod string, signals []domain.KeywordSignal) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin keyword replace: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM keyword_signals WHERE topic_id = $1 AND time_period = $2`,
		topicID, timePeriod); err != nil {
		return fmt.Errorf("delete old keyword signals: %w", err)
	}

	for _, s := range signals {
		if _, err := tx.Exec(ctx, `
			INSERT INTO keyword_signals (topic_id, keyword, frequency, weight, time_period, analyzed_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			topicID, SanitizeUTF8(s.Keyword), s.Frequency, s.Weight, timePeriod, s.AnalyzedAt); err != nil {
			return fmt.Errorf("insert keyword signal %q: %w", s.Keyword, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit keyword replace: %w", err)
	}

	return nil
}

// KeywordSignals returns the stored keywords for a topic and period, ranked
// by weight.
func (db *DB) KeywordSignals(ctx context.Context, topicID int64, timePeriod string) ([]domain.KeywordSignal, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT topic_id, keyword, frequency, weight, time_period, analyzed_at
		FROM keyword_signals
		WHERE topic_id = $1 AND time_period = $2
		ORDER BY weight DESC, keyword`, topicID, timePeriod)
	if err != nil {
		return nil, fmt.Errorf("query keyword signals: %w", err)
	}
	defer rows.Close()

	var signals []domain.KeywordSignal

	for rows.Next() {
		var s domain.KeywordSignal
		if err := rows.Scan(&s.TopicID, &s.Keyword, &s.Frequency, &s.Weight, &s.TimePeriod, &s.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("scan keyword signal: %w", err)
		}

		signals = append(signals, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyword signals: %w", err)
	}

	return signals, nil
}

// LatestKeywordSignals returns the most recently analyzed keyword set for a
// topic regardless of period.
func (db *DB) LatestKeywordSignals(ctx context.Context, topicID int64, limit int) ([]domain.KeywordSignal, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT topic_id, keyword, frequency, weight, time_period, analyzed_at
		FROM keyword_signals
		WHERE topic_id = $1
			AND time_period = (
				SELECT time_period FROM keyword_signals
				WHERE topic_id = $1
				ORDER BY analyzed_at DESC
				LIMIT 1
			)
		ORDER BY weight DESC, keyword
		LIMIT $2`, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest keyword signals: %w", err)
	}
	defer rows.Close()

	var signals []domain.KeywordSignal

	for rows.Next() {
		var s domain.KeywordSignal
		if err := rows.Scan(&s.TopicID, &s.Keyword, &s.Frequency, &s.Weight, &s.TimePeriod, &s.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("scan keyword signal: %w", err)
		}

		signals = append(signals, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyword signals: %w", err)
	}

	return signals, nil
}
