package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/test")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.HealthPort)
	assert.Equal(t, 10, cfg.IngestBatchSize)
	assert.Equal(t, 3, cfg.MinTextRunes)
	assert.Equal(t, time.Duration(0), cfg.PipelineInterval)
	assert.Equal(t, "discover", cfg.PipelineMode)
}

func TestLoadMissingDSN(t *testing.T) {
	// t.Setenv registers the restore; unset to simulate a missing variable.
	t.Setenv("POSTGRES_DSN", "placeholder")
	require.NoError(t, os.Unsetenv("POSTGRES_DSN"))

	_, err := Load()

	require.Error(t, err)
}

func TestLoadListValues(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/test")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("CRAWLER_BLOCKED_TERMS", "广告,推广")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"广告", "推广"}, cfg.CrawlerBlockedTerms)
}
