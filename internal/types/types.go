package types

import (
	"context"

	"github.com/xhad/docsearch/internal/models"
)

// Core interfaces
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id int64) (*models.Document, error)
	FindByName(ctx context.Context, name string) (*models.Document, error)
	Delete(ctx context.Context, id int64) error
}

type VectorIndex interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, entry models.IndexEntry) error
	Query(ctx context.Context, vector []float32, topK int) ([]models.IndexMatch, error)
	Delete(ctx context.Context, ids []string) error
}

type FileStore interface {
	Save(ctx context.Context, name string, data []byte) (key string, err error)
	Read(ctx context.Context, key string) ([]byte, error)
	// Remove deletes the stored file. A missing file is not an error.
	Remove(ctx context.Context, key string) error
}

type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
