// Package config loads the application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Crawler
	CrawlerStorePath      string        `env:"CRAWLER_STORE_PATH"`
	CrawlerControlURL     string        `env:"CRAWLER_CONTROL_URL"`
	CrawlerControlTimeout time.Duration `env:"CRAWLER_CONTROL_TIMEOUT" envDefault:"30s"`
	CrawlerBlockedTerms   []string      `env:"CRAWLER_BLOCKED_TERMS" envSeparator:","`
	KafkaBrokers          []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic            string        `env:"KAFKA_TOPIC" envDefault:"weibo.raw"`
	KafkaGroupID          string        `env:"KAFKA_GROUP_ID" envDefault:"sentiment-platform"`

	// Ingestion
	IngestBatchSize int `env:"INGEST_BATCH_SIZE" envDefault:"10"`
	FetchLimit      int `env:"FETCH_LIMIT" envDefault:"200"`

	// Sentiment classifier
	ScorerURL     string        `env:"SCORER_URL" envDefault:"http://localhost:5005"`
	ScorerTimeout time.Duration `env:"SCORER_TIMEOUT" envDefault:"30s"`
	ScorerRPS     float64       `env:"SCORER_RPS" envDefault:"10"`
	MinTextRunes  int           `env:"MIN_TEXT_RUNES" envDefault:"3"`

	// Scheduled runs: zero disables the background loop in serve mode.
	PipelineInterval time.Duration `env:"PIPELINE_INTERVAL" envDefault:"0"`
	PipelineMode     string        `env:"PIPELINE_MODE" envDefault:"discover"`

	// Insight reports (optional)
	LLMAPIKey string `env:"LLM_API_KEY"`
	LLMModel  string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
