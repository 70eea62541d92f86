package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
)

// SummarizeRequest names a document by ID or by name. ID wins when both
// are set.
type SummarizeRequest struct {
	DocumentID   *int64
	DocumentName string
}

// Summarize produces a short summary of a stored document.
func (s *Service) Summarize(ctx context.Context, req SummarizeRequest) (summary string, err error) {
	const op = "summarize"
	defer func(start time.Time) { observe(op, start, err) }(time.Now())

	if s.summarizer == nil {
		return "", types.E(types.KindSummarizationService, op, errors.New("no summarizer configured"))
	}

	doc, err := s.resolve(ctx, req)
	if err != nil {
		return "", err
	}

	data, err := s.files.Read(ctx, doc.FileKey)
	if errors.Is(err, types.ErrNotFound) {
		return "", types.E(types.KindUnreadableDocument, op, err)
	}
	if err != nil {
		return "", types.E(types.KindStorage, op, err)
	}

	text, err := s.extract(ctx, op, data)
	if err != nil {
		return "", err
	}

	err = timed("summarization", func() (err error) {
		summary, err = s.summarizer.Summarize(ctx, text)
		return err
	})
	if err != nil {
		return "", types.E(types.KindSummarizationService, op, err)
	}

	s.logger.InfoContext(ctx, "document summarized", "op", op, "document_id", doc.ID)
	return summary, nil
}

func (s *Service) resolve(ctx context.Context, req SummarizeRequest) (*models.Document, error) {
	const op = "summarize"

	var (
		doc *models.Document
		err error
	)
	switch {
	case req.DocumentID != nil:
		doc, err = s.docs.Get(ctx, *req.DocumentID)
	case strings.TrimSpace(req.DocumentName) != "":
		doc, err = s.docs.FindByName(ctx, strings.TrimSpace(req.DocumentName))
	default:
		return nil, types.E(types.KindInvalidRequest, op, errors.New("document_id or document_name is required"))
	}

	if errors.Is(err, types.ErrNotFound) {
		return nil, types.E(types.KindNotFound, op, err)
	}
	if err != nil {
		return nil, types.E(types.KindStorage, op, err)
	}
	return doc, nil
}
