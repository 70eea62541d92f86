// Package service implements the upload, search, summarize and delete
// workflows over injected storage, index and language model clients.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xhad/docsearch/internal/types"
	"github.com/xhad/docsearch/pkg/observability"
	"github.com/xhad/docsearch/pkg/processor"
)

type Config struct {
	// Candidates is how many nearest entries are requested from the index.
	Candidates int
	// MinScore is the inclusive similarity threshold for search results.
	// Nil means 0.8; an explicit 0 keeps every candidate.
	MinScore   *float64
	MaxResults int
	// PreviewLength is the number of characters kept as content preview.
	PreviewLength int
}

// Dependencies are the clients the workflows run against.
type Dependencies struct {
	Documents  types.DocumentStore
	Index      types.VectorIndex
	Files      types.FileStore
	Extractor  types.TextExtractor
	Embedder   types.Embedder
	Summarizer types.Summarizer
	Logger     *slog.Logger
}

type Service struct {
	config     Config
	docs       types.DocumentStore
	index      types.VectorIndex
	files      types.FileStore
	extractor  types.TextExtractor
	embedder   types.Embedder
	summarizer types.Summarizer
	processor  processor.Processor
	logger     *slog.Logger
}

func NewWithConfig(deps Dependencies, config Config) (*Service, error) {
	if deps.Documents == nil || deps.Index == nil || deps.Files == nil {
		return nil, errors.New("document store, vector index and file store are required")
	}
	if deps.Extractor == nil || deps.Embedder == nil {
		return nil, errors.New("extractor and embedder are required")
	}

	if config.Candidates <= 0 {
		config.Candidates = 10
	}
	if config.MinScore == nil {
		minScore := 0.8
		config.MinScore = &minScore
	}
	if *config.MinScore < 0 || *config.MinScore > 1 {
		return nil, fmt.Errorf("min score %v is outside [0, 1]", *config.MinScore)
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 5
	}
	if config.MaxResults > config.Candidates {
		return nil, fmt.Errorf("max results (%d) exceeds candidates (%d)", config.MaxResults, config.Candidates)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		config:     config,
		docs:       deps.Documents,
		index:      deps.Index,
		files:      deps.Files,
		extractor:  deps.Extractor,
		embedder:   deps.Embedder,
		summarizer: deps.Summarizer,
		processor:  processor.NewWithConfig(processor.ProcessorConfig{PreviewLength: config.PreviewLength}),
		logger:     logger,
	}, nil
}

// Provision creates the vector index if it does not exist. It is meant to
// run once at start-up.
func (s *Service) Provision(ctx context.Context) error {
	if err := s.index.EnsureIndex(ctx); err != nil {
		return types.E(types.KindIndexWrite, "provision", err)
	}
	return nil
}

// observe records the outcome and duration of a workflow run.
func observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(types.KindOf(err))
	}
	observability.OperationsTotal.WithLabelValues(op, outcome).Inc()
	observability.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func timed(dependency string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.DependencyLatency.WithLabelValues(dependency).Observe(time.Since(start).Seconds())
	return err
}

// reconcile reports state that a failed compensating action left behind.
// Operators are expected to clean these up by hand.
func (s *Service) reconcile(ctx context.Context, op, msg string, args ...any) {
	observability.Inconsistencies.WithLabelValues(op).Inc()
	s.logger.ErrorContext(ctx, msg, append([]any{"op", op, "reconcile", true}, args...)...)
}
