// Package crawler holds the clients for the external crawler service: a
// read-only reader of its sqlite result store, a Kafka consumer for its
// streaming output and an HTTP control client for hot-topic discovery and
// keyword handover.
package crawler

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/observability"
)

const sourceStore = "store"

// StoreReader reads raw records from the crawler's sqlite result database.
// The store is owned by the crawler; this reader never writes to it.
type StoreReader struct {
	db *sql.DB
}

// OpenStore opens the crawler store read-only.
func OpenStore(path string) (*StoreReader, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open crawler store: %w", err)
	}

	return &StoreReader{db: db}, nil
}

// Close closes the underlying store handle.
func (r *StoreReader) Close() error {
	return r.db.Close()
}

// Fetch returns up to limit note rows joined with their first comment,
// newest first. An empty keyword returns records for all keywords.
func (r *StoreReader) Fetch(ctx context.Context, keyword string, limit int) ([]domain.RawRecord, error) {
	query := `
		SELECT n.note_id, COALESCE(n.content, ''), COALESCE(n.source_keyword, ''),
			COALESCE(n.nickname, ''), COALESCE(n.liked_count, ''), COALESCE(n.shared_count, ''),
			COALESCE(n.comments_count, ''), COALESCE(n.create_time, ''),
			COALESCE((SELECT c.content FROM weibo_note_comment c
				WHERE c.note_id = n.note_id ORDER BY c.create_time LIMIT 1), '')
		FROM weibo_note n
		WHERE (? = '' OR n.source_keyword = ?)
		ORDER BY n.create_time DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, keyword, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("query crawler store: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []domain.RawRecord

	for rows.Next() {
		var rec domain.RawRecord
		if err := rows.Scan(&rec.ExternalID, &rec.Content, &rec.SourceKeyword,
			&rec.AuthorName, &rec.LikesCount, &rec.SharesCount,
			&rec.CommentsCount, &rec.Timestamp, &rec.CommentText); err != nil {
			return nil, fmt.Errorf("scan crawler row: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crawler rows: %w", err)
	}

	observability.CrawlerRecordsFetched.WithLabelValues(sourceStore).Add(float64(len(records)))

	return records, nil
}
