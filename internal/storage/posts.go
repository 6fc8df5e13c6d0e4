package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

// PostExists reports whether a post with the given external id is already
// stored.
func (db *DB) PostExists(ctx context.Context, externalID string) (bool, error) {
	var exists bool

	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE external_id = $1)`, externalID).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}

	return exists, nil
}

// InsertPosts stores a batch of posts and returns how many rows were
// actually written. Conflicts on external_id are dropped silently so racing
// ingestion runs stay idempotent.
func (db *DB) InsertPosts(ctx context.Context, posts []domain.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}

	for _, p := range posts {
		batch.Queue(`
			INSERT INTO posts (topic_id, external_id, content, comment_text, author_name,
				source_keyword, likes_count, shares_count, comments_count, publish_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (external_id) DO NOTHING`,
			p.TopicID, p.ExternalID, SanitizeUTF8(p.Content), SanitizeUTF8(p.CommentText),
			SanitizeUTF8(p.AuthorName), SanitizeUTF8(p.SourceKeyword),
			p.LikesCount, p.SharesCount, p.CommentsCount, p.PublishTime)
	}

	results := db.Pool.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()

	inserted := 0

	for range posts {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert post batch: %w", err)
		}

		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// TopicContents returns the text corpus for one topic: content plus comment
// text per post, most recent first.
func (db *DB) TopicContents(ctx context.Context, topicID int64, limit int) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT content, COALESCE(comment_text, '')
		FROM posts
		WHERE topic_id = $1
		ORDER BY publish_time DESC NULLS LAST, id DESC
		LIMIT $2`, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("query topic contents: %w", err)
	}
	defer rows.Close()

	var docs []string

	for rows.Next() {
		var content, comment string
		if err := rows.Scan(&content, &comment); err != nil {
			return nil, fmt.Errorf("scan topic content: %w", err)
		}

		if comment != "" {
			content = content + " " + comment
		}

		docs = append(docs, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic contents: %w", err)
	}

	return docs, nil
}

// UnscoredPosts returns posts of a topic that have no sentiment record yet.
func (db *DB) UnscoredPosts(ctx context.Context, topicID int64, limit int) ([]domain.Post, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT p.id, p.topic_id, p.external_id, p.content, COALESCE(p.comment_text, ''),
			COALESCE(p.author_name, ''), COALESCE(p.source_keyword, ''),
			p.likes_count, p.shares_count, p.comments_count,
			COALESCE(p.publish_time, p.created_at), p.created_at
		FROM posts p
		LEFT JOIN sentiment_records s ON s.post_id = p.id
		WHERE p.topic_id = $1 AND s.post_id IS NULL
		ORDER BY p.id
		LIMIT $2`, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("query unscored posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post

	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.TopicID, &p.ExternalID, &p.Content, &p.CommentText,
			&p.AuthorName, &p.SourceKeyword, &p.LikesCount, &p.SharesCount,
			&p.CommentsCount, &p.PublishTime, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unscored post: %w", err)
		}

		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unscored posts: %w", err)
	}

	return posts, nil
}
