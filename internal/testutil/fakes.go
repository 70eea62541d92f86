package testutil

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
)

// Embedder is a deterministic bag-of-words embedder. Texts with the same
// word distribution map to the same direction, so their cosine similarity
// is 1.
type Embedder struct {
	Dim int
	Err error

	mu    sync.Mutex
	calls int
}

func NewEmbedder(dim int) *Embedder {
	return &Embedder{Dim: dim}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	err := e.Err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	vector := make([]float32, e.Dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vector[h.Sum32()%uint32(e.Dim)]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vector {
			vector[i] /= n
		}
	}
	return vector, nil
}

func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Summarizer returns Summary, or Err when set, and records its input.
type Summarizer struct {
	Summary string
	Err     error
	Input   string
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.Input = text
	if s.Err != nil {
		return "", s.Err
	}
	return s.Summary, nil
}

// Files is an in-memory file store.
type Files struct {
	SaveErr   error
	RemoveErr error

	mu    sync.Mutex
	seq   int
	files map[string][]byte
}

var _ types.FileStore = (*Files)(nil)

func NewFiles() *Files {
	return &Files{files: make(map[string][]byte)}
}

func (f *Files) Save(ctx context.Context, name string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SaveErr != nil {
		return "", f.SaveErr
	}
	f.seq++
	key := fmt.Sprintf("%04d-%s", f.seq, name)
	f.files[key] = append([]byte(nil), data...)
	return key, nil
}

func (f *Files) Read(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", key, types.ErrNotFound)
	}
	return data, nil
}

func (f *Files) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	delete(f.files, key)
	return nil
}

func (f *Files) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[key]
	return ok
}

func (f *Files) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

// Index wraps a vector index and fails selected operations.
type Index struct {
	types.VectorIndex
	UpsertErr error
	QueryErr  error
	DeleteErr error

	// Matches, when non-nil, replaces the wrapped index's query results.
	Matches []models.IndexMatch
}

func (ix *Index) Upsert(ctx context.Context, entry models.IndexEntry) error {
	if ix.UpsertErr != nil {
		return ix.UpsertErr
	}
	return ix.VectorIndex.Upsert(ctx, entry)
}

func (ix *Index) Query(ctx context.Context, vector []float32, topK int) ([]models.IndexMatch, error) {
	if ix.QueryErr != nil {
		return nil, ix.QueryErr
	}
	if ix.Matches != nil {
		if len(ix.Matches) > topK {
			return ix.Matches[:topK], nil
		}
		return ix.Matches, nil
	}
	return ix.VectorIndex.Query(ctx, vector, topK)
}

func (ix *Index) Delete(ctx context.Context, ids []string) error {
	if ix.DeleteErr != nil {
		return ix.DeleteErr
	}
	return ix.VectorIndex.Delete(ctx, ids)
}

// Documents wraps a document store and fails selected operations.
type Documents struct {
	types.DocumentStore
	CreateErr error
	GetErr    error
	DeleteErr error
}

func (d *Documents) Create(ctx context.Context, doc *models.Document) error {
	if d.CreateErr != nil {
		return d.CreateErr
	}
	return d.DocumentStore.Create(ctx, doc)
}

func (d *Documents) Get(ctx context.Context, id int64) (*models.Document, error) {
	if d.GetErr != nil {
		return nil, d.GetErr
	}
	return d.DocumentStore.Get(ctx, id)
}

func (d *Documents) Delete(ctx context.Context, id int64) error {
	if d.DeleteErr != nil {
		return d.DeleteErr
	}
	return d.DocumentStore.Delete(ctx, id)
}
