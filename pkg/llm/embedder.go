package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// EmbedderConfig represents the configuration for an embedding client.
type EmbedderConfig struct {
	Provider  string // "openai" or "ollama"
	Model     string
	BaseURL   string
	APIKey    string
	Dimension int
	Timeout   time.Duration
}

// Embedder converts text into a fixed-length vector using a remote model.
type Embedder struct {
	config   EmbedderConfig
	embedder embeddings.Embedder
}

// NewEmbedderWithConfig builds the provider client described by config.
func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Provider == "" {
		config.Provider = ProviderOpenAI
	}
	if config.Model == "" {
		switch config.Provider {
		case ProviderOllama:
			config.Model = "nomic-embed-text:latest"
		default:
			config.Model = "text-embedding-ada-002"
		}
	}

	client, err := newEmbeddingClient(config)
	if err != nil {
		return nil, err
	}

	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return NewEmbedder(emb, config), nil
}

// NewEmbedder wraps an existing langchaingo embedder.
func NewEmbedder(emb embeddings.Embedder, config EmbedderConfig) *Embedder {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	return &Embedder{
		config:   config,
		embedder: emb,
	}
}

// Embed returns the embedding of text. When a dimension is configured the
// returned vector must match it.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(vector) == 0 {
		return nil, errors.New("embedding service returned an empty vector")
	}
	if e.config.Dimension > 0 && len(vector) != e.config.Dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), e.config.Dimension)
	}

	return vector, nil
}
