package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/relevance"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/tracing"
)

// Modes reported on a Result, naming which scoring path served it.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// Request asks for every paragraph other than Paragraphs[QueryIndex] to be
// scored against it.
type Request struct {
	Paragraphs    []string `json:"documents"`
	QueryIndex    int      `json:"query_index"`
	Limit         int      `json:"limit,omitempty"`
	Ranked        bool     `json:"ranked,omitempty"`
	IncludeTokens bool     `json:"include_tokens,omitempty"`
}

// Result is the response to a Request. Results holds one entry per
// candidate, in candidate order unless the request was ranked.
type Result struct {
	QueryIndex int                    `json:"query_index"`
	Documents  int                    `json:"documents"`
	Vocabulary []string               `json:"vocabulary"`
	Results    []relevance.ScoreEntry `json:"results"`
	Tokens     [][]string             `json:"tokens,omitempty"`
	Mode       string                 `json:"mode"`
}

// Executor tokenizes a corpus and scores it, switching to the parallel
// scorer once the corpus reaches the configured threshold. It is safe for
// concurrent use.
type Executor struct {
	cfg       config.ScoringConfig
	stemmer   string
	tokenizer *tokenizer.Tokenizer
	metrics   *metrics.Metrics
	tracing   bool
	logger    *slog.Logger
}

// New builds an Executor. m may be nil to skip metrics.
func New(cfg config.ScoringConfig, m *metrics.Metrics, tracingEnabled bool) (*Executor, error) {
	stemmer, err := tokenizer.Canonical(cfg.Stemmer)
	if err != nil {
		return nil, fmt.Errorf("configuring tokenizer: %w", err)
	}
	stem, err := tokenizer.Lookup(stemmer)
	if err != nil {
		return nil, fmt.Errorf("configuring tokenizer: %w", err)
	}
	return &Executor{
		cfg:       cfg,
		stemmer:   stemmer,
		tokenizer: tokenizer.New(stem),
		metrics:   m,
		tracing:   tracingEnabled,
		logger:    slog.Default().With("component", "score-executor"),
	}, nil
}

// Tokenize exposes the executor's tokenizer so other surfaces split text
// the same way scoring does.
func (e *Executor) Tokenize(text string) []string {
	return e.tokenizer.Tokenize(text)
}

// Stemmer returns the canonical name of the stemmer the executor
// tokenizes with.
func (e *Executor) Stemmer() string {
	return e.stemmer
}

// Variant identifies the configuration that shapes a Result beyond the
// request itself. Results cached under one variant must not be served
// under another.
func (e *Executor) Variant() string {
	return fmt.Sprintf("stemmer=%s;default_limit=%d", e.stemmer, e.cfg.DefaultLimit)
}

// Execute scores req. Argument problems come back wrapping
// apperrors.ErrInvalidArgument; metrics are recorded either way.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result, err := e.execute(ctx, req)
	e.observe(result, err, time.Since(start))
	return result, err
}

func (e *Executor) execute(ctx context.Context, req Request) (*Result, error) {
	log := logger.FromContext(ctx).With("component", "score-executor")
	if e.cfg.MaxDocuments > 0 && len(req.Paragraphs) > e.cfg.MaxDocuments {
		return nil, apperrors.InvalidArgumentf(
			"%d documents exceeds the limit of %d", len(req.Paragraphs), e.cfg.MaxDocuments)
	}
	if req.Limit < 0 {
		return nil, apperrors.InvalidArgumentf("limit must not be negative")
	}

	var root *tracing.Span
	if e.tracing {
		ctx, root = tracing.StartSpan(ctx, "score", logger.RequestID(ctx))
		defer func() {
			root.End()
			root.Log(ctx, log)
		}()
	}

	_, tokSpan := tracing.StartChildSpan(ctx, "tokenize")
	docs := make([]relevance.Document, len(req.Paragraphs))
	for i, p := range req.Paragraphs {
		docs[i] = e.tokenizer.Tokenize(p)
	}
	tokSpan.SetAttr("documents", len(docs))
	tokSpan.End()

	var vocabulary []string
	if req.QueryIndex >= 0 && req.QueryIndex < len(docs) {
		if len(docs[req.QueryIndex]) == 0 {
			log.Warn("query document has no terms, every candidate scores zero",
				"query_index", req.QueryIndex,
				"error", apperrors.ErrDegenerateInput,
			)
		}
		vocabulary = relevance.TermFrequency(docs[req.QueryIndex]).Terms()
	}

	_, scoreSpan := tracing.StartChildSpan(ctx, "relevance")
	mode := ModeSequential
	var scores []relevance.ScoreEntry
	var err error
	if e.cfg.ParallelThreshold > 0 && len(docs) >= e.cfg.ParallelThreshold {
		mode = ModeParallel
		scores, err = relevance.ScoreParallel(ctx, req.QueryIndex, docs, e.cfg.Workers)
	} else {
		scores, err = relevance.Score(req.QueryIndex, docs)
	}
	scoreSpan.SetAttr("mode", mode)
	scoreSpan.End()
	if err != nil {
		return nil, fmt.Errorf("scoring query %d: %w", req.QueryIndex, err)
	}

	if req.Ranked {
		_, rankSpan := tracing.StartChildSpan(ctx, "rank")
		limit := req.Limit
		if limit == 0 {
			limit = e.cfg.DefaultLimit
		}
		scores = ranker.TopK(scores, limit)
		rankSpan.End()
	}

	result := &Result{
		QueryIndex: req.QueryIndex,
		Documents:  len(docs),
		Vocabulary: vocabulary,
		Results:    scores,
		Mode:       mode,
	}
	if result.Vocabulary == nil {
		result.Vocabulary = []string{}
	}
	if req.IncludeTokens {
		result.Tokens = make([][]string, len(docs))
		for i, d := range docs {
			result.Tokens[i] = d
		}
	}
	log.Debug("query scored",
		"query_index", req.QueryIndex,
		"documents", len(docs),
		"vocabulary", len(vocabulary),
		"mode", mode,
		"results", len(scores),
	)
	return result, nil
}

func (e *Executor) observe(result *Result, err error, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	switch {
	case err == nil:
		e.metrics.ScoreRequestsTotal.WithLabelValues("ok").Inc()
		e.metrics.ScoreLatency.WithLabelValues(result.Mode).Observe(elapsed.Seconds())
		e.metrics.CorpusSize.Observe(float64(result.Documents))
		e.metrics.VocabularySize.Observe(float64(len(result.Vocabulary)))
	case errors.Is(err, apperrors.ErrInvalidArgument):
		e.metrics.ScoreRequestsTotal.WithLabelValues("invalid").Inc()
	default:
		e.metrics.ScoreRequestsTotal.WithLabelValues("error").Inc()
	}
}
