package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
)

// VectorIndex is a brute-force cosine similarity index.
type VectorIndex struct {
	mu      sync.RWMutex
	dim     int
	entries map[string]models.IndexEntry
}

var _ types.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex returns an empty index. A dim of zero accepts vectors of
// any length.
func NewVectorIndex(dim int) *VectorIndex {
	return &VectorIndex{
		dim:     dim,
		entries: make(map[string]models.IndexEntry),
	}
}

func (ix *VectorIndex) EnsureIndex(ctx context.Context) error {
	return nil
}

func (ix *VectorIndex) Upsert(ctx context.Context, entry models.IndexEntry) error {
	if ix.dim > 0 && len(entry.Vector) != ix.dim {
		return fmt.Errorf("vector has %d dimensions, index expects %d", len(entry.Vector), ix.dim)
	}

	vector := make([]float32, len(entry.Vector))
	copy(vector, entry.Vector)
	entry.Vector = vector

	ix.mu.Lock()
	ix.entries[entry.ID] = entry
	ix.mu.Unlock()
	return nil
}

func (ix *VectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.IndexMatch, error) {
	if topK <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	matches := make([]models.IndexMatch, 0, len(ix.entries))
	for id, e := range ix.entries {
		if len(e.Vector) != len(vector) {
			continue
		}
		matches = append(matches, models.IndexMatch{
			ID:       id,
			Score:    Cosine(vector, e.Vector),
			Metadata: e.Metadata,
		})
	}
	ix.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (ix *VectorIndex) Delete(ctx context.Context, ids []string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, id := range ids {
		delete(ix.entries, id)
	}
	return nil
}

// Has reports whether an entry exists for id.
func (ix *VectorIndex) Has(id string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.entries[id]
	return ok
}

func (ix *VectorIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
