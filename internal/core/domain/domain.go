// Package domain holds the core entities shared across the ingestion and
// analytics pipeline: topics, raw crawler records, canonical posts, keyword
// signals and sentiment records.
package domain

import "time"

// Topic is a named, tagged subject that canonical posts are associated with.
type Topic struct {
	ID        int64
	Name      string
	Tag       string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RawRecord is one record produced by the external crawler. It is transient:
// consumed once by the ingestor and never persisted verbatim.
type RawRecord struct {
	ExternalID    string `json:"external_id"`
	Content       string `json:"content"`
	CommentText   string `json:"comment_text,omitempty"`
	SourceKeyword string `json:"source_keyword,omitempty"`
	AuthorName    string `json:"author_name,omitempty"`
	LikesCount    string `json:"likes_count,omitempty"`
	SharesCount   string `json:"shares_count,omitempty"`
	CommentsCount string `json:"comments_count,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// Post is the deduplicated, normalized representation of one ingested record.
// Immutable after creation.
type Post struct {
	ID            int64
	TopicID       int64
	ExternalID    string
	Content       string
	CommentText   string
	AuthorName    string
	SourceKeyword string
	LikesCount    int
	SharesCount   int
	CommentsCount int
	PublishTime   time.Time
	CreatedAt     time.Time
}

// KeywordSignal is a ranked keyword for a topic over a time period. The full
// set for a (topic, period) pair is replaced atomically on each extraction.
type KeywordSignal struct {
	TopicID    int64
	Keyword    string
	Frequency  int
	Weight     float64
	TimePeriod string
	AnalyzedAt time.Time
}

// Prediction is the classifier output for one text.
type Prediction struct {
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
	Intensity float64 `json:"intensity"`
}

// SentimentRecord is the scoring result for one post. At most one record
// exists per post; posts are never rescored.
type SentimentRecord struct {
	PostID     int64
	Label      string
	Score      float64
	Intensity  float64
	AnalyzedAt time.Time
}
