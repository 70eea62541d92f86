package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/xhad/docsearch/internal/types"
)

// Delete removes a document from the index, the file store and the record
// store, in that order. If the index delete fails nothing local is touched.
// A failure to remove the stored file is reported as a partial failure
// after the record has been deleted.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	const op = "delete"
	defer func(start time.Time) { observe(op, start, err) }(time.Now())

	doc, err := s.docs.Get(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		return types.E(types.KindNotFound, op, err)
	}
	if err != nil {
		return types.E(types.KindStorage, op, err)
	}

	logger := s.logger.With("op", op, "document_id", id, "file", doc.FileKey)

	err = timed("index_delete", func() error {
		return s.index.Delete(ctx, []string{strconv.FormatInt(id, 10)})
	})
	if err != nil {
		return types.E(types.KindIndexWrite, op, err)
	}

	// The index entry is gone; finish the local cleanup even if the caller
	// goes away.
	ctx = context.WithoutCancel(ctx)

	fileErr := s.files.Remove(ctx, doc.FileKey)
	if fileErr != nil {
		s.reconcile(ctx, op, "stored file not removed", "document_id", id, "file", doc.FileKey, "error", fileErr)
	}

	if err := s.docs.Delete(ctx, id); err != nil && !errors.Is(err, types.ErrNotFound) {
		s.reconcile(ctx, op, "document record left without index entry", "document_id", id, "error", err)
		return types.E(types.KindStorage, op, err)
	}

	if fileErr != nil {
		return types.E(types.KindPartialDelete, op, fileErr)
	}

	logger.InfoContext(ctx, "document deleted")
	return nil
}
