package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/cache"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/logger"
)

// ScoreExecutor is the scoring backend; *executor.Executor satisfies it.
type ScoreExecutor interface {
	Execute(ctx context.Context, req executor.Request) (*executor.Result, error)
	Tokenize(text string) []string
}

// Handler serves the scoring HTTP API.
type Handler struct {
	executor     ScoreExecutor
	cache        *cache.ResultCache
	collector    *analytics.Collector
	maxBodyBytes int64
	logger       *slog.Logger
}

// New wires a Handler. queryCache and collector may be nil.
func New(exec ScoreExecutor, queryCache *cache.ResultCache, collector *analytics.Collector, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 4 << 20
	}
	return &Handler{
		executor:     exec,
		cache:        queryCache,
		collector:    collector,
		maxBodyBytes: maxBodyBytes,
		logger:       slog.Default().With("component", "score-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/score", h.Score)
	mux.HandleFunc("POST /api/v1/tokenize", h.Tokenize)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

type scoreRequest struct {
	Documents     *[]string `json:"documents"`
	QueryIndex    int       `json:"query_index"`
	Limit         int       `json:"limit"`
	Ranked        bool      `json:"ranked"`
	IncludeTokens bool      `json:"include_tokens"`
}

type scoreResponse struct {
	*executor.Result
	CacheHit bool `json:"cache_hit"`
}

// Score handles POST /api/v1/score. Cached results are served when a cache
// is configured, and every outcome is reported to the collector.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var body scoreRequest
	if err := h.decode(w, r, &body); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Documents == nil {
		h.writeError(w, http.StatusBadRequest, "field 'documents' is required")
		return
	}
	req := executor.Request{
		Paragraphs:    *body.Documents,
		QueryIndex:    body.QueryIndex,
		Limit:         body.Limit,
		Ranked:        body.Ranked,
		IncludeTokens: body.IncludeTokens,
	}

	var result *executor.Result
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, req, func() (*executor.Result, error) {
			return h.executor.Execute(ctx, req)
		})
	} else {
		result, err = h.executor.Execute(ctx, req)
	}
	latencyMs := time.Since(start).Milliseconds()

	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		h.track(ctx, req, nil, false, latencyMs, err)
		if status >= http.StatusInternalServerError {
			log.Error("scoring failed", "query_index", req.QueryIndex, "error", err)
			h.writeError(w, status, "scoring failed")
			return
		}
		h.writeError(w, status, err.Error())
		return
	}

	log.Info("score completed",
		"query_index", req.QueryIndex,
		"documents", result.Documents,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	h.track(ctx, req, result, cacheHit, latencyMs, nil)
	h.writeJSON(w, http.StatusOK, scoreResponse{Result: result, CacheHit: cacheHit})
}

type tokenizeRequest struct {
	Text string `json:"text"`
}

func (h *Handler) Tokenize(w http.ResponseWriter, r *http.Request) {
	var body tokenizeRequest
	if err := h.decode(w, r, &body); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"tokens": h.executor.Tokenize(body.Text)})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) track(ctx context.Context, req executor.Request, result *executor.Result, cacheHit bool, latencyMs int64, err error) {
	if h.collector == nil {
		return
	}
	event := analytics.ScoreEvent{
		Type:       analytics.EventScore,
		QueryIndex: req.QueryIndex,
		Documents:  len(req.Paragraphs),
		Ranked:     req.Ranked,
		LatencyMs:  latencyMs,
		CacheHit:   cacheHit,
		Timestamp:  time.Now().UTC(),
		RequestID:  logger.RequestID(ctx),
	}
	switch {
	case err != nil && errors.Is(err, apperrors.ErrInvalidArgument):
		event.Type = analytics.EventInvalid
		event.Error = err.Error()
	case err != nil:
		event.Error = err.Error()
	default:
		if h.cache != nil {
			event.Type = analytics.EventCacheMiss
			if cacheHit {
				event.Type = analytics.EventCacheHit
			}
		}
		event.Vocabulary = len(result.Vocabulary)
		event.Returned = len(result.Results)
		event.Mode = result.Mode
		if req.Ranked && len(result.Results) > 0 {
			top := result.Results[0].Index
			event.TopIndex = &top
		}
	}
	h.collector.Track(event)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
