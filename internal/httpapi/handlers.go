// Package httpapi exposes the pipeline over a small JSON API, mounted on the
// observability server.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
	"github.com/3190735983/weibo-sentiment-platform/internal/process/pipeline"
	db "github.com/3190735983/weibo-sentiment-platform/internal/storage"
)

// Orchestrator is the pipeline surface the API needs.
type Orchestrator interface {
	Run(ctx context.Context, params pipeline.Params) (*pipeline.RunResult, error)
	ProcessTopic(ctx context.Context, topicID int64) (*pipeline.RunResult, error)
	Status() pipeline.Status
}

// Repository is the storage surface the API needs.
type Repository interface {
	GetTopic(ctx context.Context, id int64) (*domain.Topic, error)
	SentimentDistribution(ctx context.Context, topicID int64) (map[string]int, error)
}

var _ Repository = (*db.DB)(nil)

// Reporter generates an analyst report for a topic. Optional: a nil reporter
// disables the report endpoint.
type Reporter interface {
	GenerateReport(ctx context.Context, topicID int64) (string, error)
}

// Handler serves the pipeline API.
type Handler struct {
	orchestrator Orchestrator
	database     Repository
	reporter     Reporter
	logger       *zerolog.Logger
}

func NewHandler(orchestrator Orchestrator, database Repository, reporter Reporter, logger *zerolog.Logger) http.Handler {
	h := &Handler{
		orchestrator: orchestrator,
		database:     database,
		reporter:     reporter,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/pipeline/run", h.runPipeline)
	mux.HandleFunc("GET /api/pipeline/status", h.pipelineStatus)
	mux.HandleFunc("POST /api/topics/{id}/process", h.processTopic)
	mux.HandleFunc("GET /api/topics/{id}/sentiment", h.topicSentiment)
	mux.HandleFunc("GET /api/topics/{id}/report", h.topicReport)

	return mux
}

type runRequest struct {
	Mode          string `json:"mode"`
	Keyword       string `json:"keyword"`
	Limit         int    `json:"limit"`
	SkipDiscovery bool   `json:"skip_discovery"`
	SkipIngest    bool   `json:"skip_ingest"`
	SkipKeywords  bool   `json:"skip_keywords"`
	SkipSentiment bool   `json:"skip_sentiment"`
}

type envelope struct {
	Status  string `json:"status"`
	Results any    `json:"results,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) runPipeline(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	result, err := h.orchestrator.Run(r.Context(), pipeline.Params{
		Mode:    req.Mode,
		Keyword: req.Keyword,
		Limit:   req.Limit,
		Steps: pipeline.Steps{
			SkipDiscovery: req.SkipDiscovery,
			SkipIngest:    req.SkipIngest,
			SkipKeywords:  req.SkipKeywords,
			SkipSentiment: req.SkipSentiment,
		},
	})
	if err != nil {
		h.writePipelineError(w, err)

		return
	}

	h.writeJSON(w, http.StatusOK, envelope{Status: "ok", Results: result, Message: result.Message})
}

func (h *Handler) pipelineStatus(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.orchestrator.Status())
}

func (h *Handler) processTopic(w http.ResponseWriter, r *http.Request) {
	topicID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid topic id")

		return
	}

	if _, err := h.database.GetTopic(r.Context(), topicID); err != nil {
		if errors.Is(err, db.ErrTopicNotFound) {
			h.writeError(w, http.StatusNotFound, "topic not found")

			return
		}

		h.internalError(w, err)

		return
	}

	result, err := h.orchestrator.ProcessTopic(r.Context(), topicID)
	if err != nil {
		h.writePipelineError(w, err)

		return
	}

	h.writeJSON(w, http.StatusOK, envelope{Status: "ok", Results: result, Message: result.Message})
}

type distributionResponse struct {
	Counts      map[string]int     `json:"counts"`
	Percentages map[string]float64 `json:"percentages"`
	Total       int                `json:"total"`
}

func (h *Handler) topicSentiment(w http.ResponseWriter, r *http.Request) {
	topicID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid topic id")

		return
	}

	counts, err := h.database.SentimentDistribution(r.Context(), topicID)
	if err != nil {
		h.internalError(w, err)

		return
	}

	total := 0
	for _, count := range counts {
		total += count
	}

	percentages := make(map[string]float64, len(counts))

	for label, count := range counts {
		percentages[label] = float64(count) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, distributionResponse{
		Counts:      counts,
		Percentages: percentages,
		Total:       total,
	})
}

func (h *Handler) topicReport(w http.ResponseWriter, r *http.Request) {
	if h.reporter == nil {
		h.writeError(w, http.StatusNotImplemented, "report generation is not configured")

		return
	}

	topicID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid topic id")

		return
	}

	report, err := h.reporter.GenerateReport(r.Context(), topicID)
	if err != nil {
		if errors.Is(err, db.ErrTopicNotFound) {
			h.writeError(w, http.StatusNotFound, "topic not found")

			return
		}

		h.internalError(w, err)

		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"report": report})
}

func (h *Handler) writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrPipelineBusy):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, pipeline.ErrKeywordRequired), errors.Is(err, pipeline.ErrUnknownMode):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.internalError(w, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("api request failed")
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, envelope{Status: "error", Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("encode api response")
	}
}
