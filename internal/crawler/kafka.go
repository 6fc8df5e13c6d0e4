package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/platform/observability"
)

const (
	sourceKafka      = "kafka"
	defaultFetchWait = 5 * time.Second
	maxMessageBytes  = 10e6
)

// KafkaSource consumes raw records the crawler publishes to a Kafka topic.
// Each message body is one JSON-encoded record.
type KafkaSource struct {
	reader *kafka.Reader
	wait   time.Duration
	logger *zerolog.Logger
}

func NewKafkaSource(brokers []string, topic, groupID string, logger *zerolog.Logger) *KafkaSource {
	return &KafkaSource{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: maxMessageBytes,
		}),
		wait:   defaultFetchWait,
		logger: logger,
	}
}

// Close closes the underlying reader.
func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

// Fetch drains up to limit messages. It stops early once the topic is idle
// for the wait window, so a quiet topic does not stall the pipeline.
// Messages that fail to decode are logged and dropped. The keyword argument
// is unused: the crawler already partitions its output by crawl keyword.
func (s *KafkaSource) Fetch(ctx context.Context, _ string, limit int) ([]domain.RawRecord, error) {
	records := make([]domain.RawRecord, 0, limit)

	for len(records) < limit {
		fetchCtx, cancel := context.WithTimeout(ctx, s.wait)
		msg, err := s.reader.ReadMessage(fetchCtx)

		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}

			if errors.Is(err, context.Canceled) && ctx.Err() == nil {
				break
			}

			return records, fmt.Errorf("read crawler message: %w", err)
		}

		var rec domain.RawRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			s.logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("dropping undecodable crawler message")

			continue
		}

		records = append(records, rec)
	}

	observability.CrawlerRecordsFetched.WithLabelValues(sourceKafka).Add(float64(len(records)))

	return records, nil
}
