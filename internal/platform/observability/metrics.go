package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentiment_posts_ingested_total",
		Help: "The total number of posts persisted by the ingestor",
	})

	RecordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_records_skipped_total",
		Help: "Total number of raw records skipped during ingestion by reason",
	}, []string{"reason"})

	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_pipeline_runs_total",
		Help: "The total number of pipeline runs by outcome",
	}, []string{"status"})

	PipelineRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentiment_pipeline_running",
		Help: "Whether a pipeline run is currently in flight",
	})

	PipelineStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentiment_pipeline_step_duration_seconds",
		Help:    "Duration of each pipeline step",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"step"})

	KeywordsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentiment_keywords_extracted_total",
		Help: "The total number of keyword signals written",
	})

	SentimentsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_posts_scored_total",
		Help: "The total number of posts scored by sentiment label",
	}, []string{"label"})

	ScorerRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentiment_scorer_request_duration_seconds",
		Help:    "Duration of classifier service requests",
		Buckets: prometheus.DefBuckets,
	})

	ScorerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentiment_scorer_errors_total",
		Help: "Total number of failed classifier requests",
	})

	CrawlerRecordsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_crawler_records_fetched_total",
		Help: "Total number of raw records fetched from crawler sources",
	}, []string{"source"})
)
