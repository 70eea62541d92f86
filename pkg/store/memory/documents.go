// Package memory provides in-process implementations of the document
// store and vector index for tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
)

type DocumentStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]models.Document
	now    func() time.Time
}

var _ types.DocumentStore = (*DocumentStore)(nil)

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[int64]models.Document),
		now:  time.Now,
	}
}

// Create assigns the next ID and the upload time. Times are truncated to
// microseconds to match what PostgreSQL stores.
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	doc.ID = s.nextID
	doc.UploadedAt = s.now().UTC().Truncate(time.Microsecond)
	s.docs[doc.ID] = *doc
	return nil
}

func (s *DocumentStore) Get(ctx context.Context, id int64) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &doc, nil
}

func (s *DocumentStore) FindByName(ctx context.Context, name string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.Document
	for _, doc := range s.docs {
		if strings.EqualFold(doc.FileName, name) || strings.EqualFold(doc.FileKey, name) {
			matches = append(matches, doc)
		}
	}
	if len(matches) == 0 {
		return nil, types.ErrNotFound
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].UploadedAt.Equal(matches[j].UploadedAt) {
			return matches[i].UploadedAt.After(matches[j].UploadedAt)
		}
		return matches[i].ID > matches[j].ID
	})
	return &matches[0], nil
}

func (s *DocumentStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Len reports how many documents are stored.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
