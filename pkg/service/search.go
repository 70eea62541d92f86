package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
	"github.com/xhad/docsearch/pkg/observability"
)

// Search returns the documents most similar to query. Results are above
// the score threshold, unique by preview, still present in storage and
// sorted by score.
func (s *Service) Search(ctx context.Context, query string) (results []models.SearchResult, err error) {
	const op = "search"
	defer func(start time.Time) { observe(op, start, err) }(time.Now())

	if strings.TrimSpace(query) == "" {
		return nil, types.E(types.KindInvalidQuery, op, errors.New("query is required"))
	}

	var vector []float32
	err = timed("embedding", func() (err error) {
		vector, err = s.embedder.Embed(ctx, query)
		return err
	})
	if err != nil {
		return nil, types.E(types.KindEmbeddingService, op, err)
	}

	var matches []models.IndexMatch
	err = timed("index_query", func() (err error) {
		matches, err = s.index.Query(ctx, vector, s.config.Candidates)
		return err
	})
	if err != nil {
		return nil, types.E(types.KindIndexQuery, op, err)
	}

	// Stale entries are dropped before dedup so they cannot claim a
	// preview that a live document shares.
	live := make([]models.IndexMatch, 0, len(matches))
	names := make(map[string]string, len(matches))
	for _, m := range AboveThreshold(matches, *s.config.MinScore) {
		doc, err := s.lookup(ctx, m.ID)
		if errors.Is(err, types.ErrNotFound) {
			s.logger.DebugContext(ctx, "dropping stale index entry", "op", op, "id", m.ID)
			continue
		}
		if err != nil {
			return nil, types.E(types.KindStorage, op, err)
		}
		live = append(live, m)
		names[m.ID] = doc.FileName
	}

	kept := Dedup(live)
	results = make([]models.SearchResult, 0, len(kept))
	for _, m := range kept {
		results = append(results, models.SearchResult{
			ID:             m.ID,
			Score:          m.Score,
			ContentPreview: m.Metadata.Content,
			FileName:       names[m.ID],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > s.config.MaxResults {
		results = results[:s.config.MaxResults]
	}

	observability.SearchResults.Observe(float64(len(results)))
	return results, nil
}

// lookup resolves an index identifier to its document. Identifiers that are
// not document IDs are reported as not found.
func (s *Service) lookup(ctx context.Context, id string) (*models.Document, error) {
	docID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, types.ErrNotFound
	}
	return s.docs.Get(ctx, docID)
}

// AboveThreshold keeps matches scoring at least minScore, in order.
func AboveThreshold(matches []models.IndexMatch, minScore float64) []models.IndexMatch {
	kept := make([]models.IndexMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score >= minScore {
			kept = append(kept, m)
		}
	}
	return kept
}

// Dedup drops matches whose content preview equals that of an earlier
// match. The first occurrence in input order wins.
func Dedup(matches []models.IndexMatch) []models.IndexMatch {
	seen := make(map[string]struct{}, len(matches))
	kept := make([]models.IndexMatch, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Metadata.Content]; ok {
			continue
		}
		seen[m.Metadata.Content] = struct{}{}
		kept = append(kept, m)
	}
	return kept
}
