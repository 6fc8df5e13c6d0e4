package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

// ErrTopicNotFound is returned when a topic id does not exist.
var ErrTopicNotFound = errors.New("topic not found")

// ActiveTopics returns all active topics in creation order. Resolution
// tie-breaking depends on this ordering.
func (db *DB) ActiveTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, tag, is_active, created_at, updated_at
		FROM topics
		WHERE is_active
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query active topics: %w", err)
	}
	defer rows.Close()

	return scanTopics(rows)
}

// GetTopic returns one topic by id, or ErrTopicNotFound.
func (db *DB) GetTopic(ctx context.Context, id int64) (*domain.Topic, error) {
	var t domain.Topic

	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, tag, is_active, created_at, updated_at
		FROM topics
		WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Tag, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTopicNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query topic %d: %w", id, err)
	}

	return &t, nil
}

// UpsertTopic inserts a topic by tag, reactivating and renaming an existing
// row. Returns the topic id and whether a new row was created.
func (db *DB) UpsertTopic(ctx context.Context, name, tag string) (int64, bool, error) {
	var (
		id      int64
		created bool
	)

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO topics (name, tag)
		VALUES ($1, $2)
		ON CONFLICT (tag) DO UPDATE
		SET name = EXCLUDED.name, is_active = true, updated_at = now()
		RETURNING id, (xmax = 0)`,
		SanitizeUTF8(name), SanitizeUTF8(tag)).
		Scan(&id, &created)
	if err != nil {
		return 0, false, fmt.Errorf("upsert topic %q: %w", tag, err)
	}

	return id, created, nil
}

func scanTopics(rows pgx.Rows) ([]domain.Topic, error) {
	var topics []domain.Topic

	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Tag, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}

		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}

	return topics, nil
}
