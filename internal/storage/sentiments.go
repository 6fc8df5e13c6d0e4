package db

import (
	"context"
	"fmt"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

// InsertSentimentRecord stores a scoring result. The post_id unique
// constraint plus DO NOTHING keeps scoring at-most-once even across racing
// runs; the bool reports whether the row was written.
func (db *DB) InsertSentimentRecord(ctx context.Context, rec domain.SentimentRecord) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO sentiment_records (post_id, label, score, intensity, analyzed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id) DO NOTHING`,
		rec.PostID, rec.Label, rec.Score, rec.Intensity, rec.AnalyzedAt)
	if err != nil {
		return false, fmt.Errorf("insert sentiment record: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SentimentDistribution returns per-label counts for a topic's scored posts.
func (db *DB) SentimentDistribution(ctx context.Context, topicID int64) (map[string]int, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT s.label, COUNT(*)
		FROM sentiment_records s
		JOIN posts p ON p.id = s.post_id
		WHERE p.topic_id = $1
		GROUP BY s.label`, topicID)
	if err != nil {
		return nil, fmt.Errorf("query sentiment distribution: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)

	for rows.Next() {
		var (
			label string
			count int
		)

		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan sentiment distribution: %w", err)
		}

		counts[label] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentiment distribution: %w", err)
	}

	return counts, nil
}
