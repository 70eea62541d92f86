package service

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
)

const pdfContentType = "application/pdf"

// ValidatePDF checks that the upload has a name, a body, a .pdf extension
// and PDF content. It has no side effects.
func ValidatePDF(fileName string, data []byte) error {
	const op = "upload"

	if strings.TrimSpace(fileName) == "" {
		return types.E(types.KindInvalidUpload, op, errors.New("file name is required"))
	}
	if len(data) == 0 {
		return types.E(types.KindInvalidUpload, op, errors.New("file is empty"))
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ct, _, _ := mime.ParseMediaType(mime.TypeByExtension(ext)); ct != pdfContentType {
		return types.E(types.KindInvalidUpload, op, errors.New("file must have a .pdf extension"))
	}
	if ct, _, _ := mime.ParseMediaType(http.DetectContentType(data)); ct != pdfContentType {
		return types.E(types.KindInvalidUpload, op, errors.New("file content is not a PDF"))
	}
	return nil
}

// Upload stores a PDF, indexes its text and returns the new document. Any
// failure after the document is persisted removes it again.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte) (result *models.UploadResult, err error) {
	const op = "upload"
	defer func(start time.Time) { observe(op, start, err) }(time.Now())

	if err := ValidatePDF(fileName, data); err != nil {
		return nil, err
	}
	fileName = filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))

	key, err := s.files.Save(ctx, fileName, data)
	if err != nil {
		return nil, types.E(types.KindStorage, op, err)
	}

	doc := &models.Document{FileName: fileName, FileKey: key}
	if err := s.docs.Create(ctx, doc); err != nil {
		if rmErr := s.files.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
			s.reconcile(ctx, op, "orphaned file after failed insert", "file", key, "error", rmErr)
		}
		return nil, types.E(types.KindStorage, op, err)
	}

	logger := s.logger.With("op", op, "document_id", doc.ID, "file", key)

	metadata, err := s.indexDocument(ctx, doc)
	if err != nil {
		logger.WarnContext(ctx, "upload failed, rolling back", "error", err)
		s.rollbackUpload(ctx, doc)
		return nil, err
	}

	logger.InfoContext(ctx, "document uploaded", "word_count", metadata.WordCount)
	return &models.UploadResult{
		Document:       *doc,
		WordCount:      metadata.WordCount,
		ContentPreview: metadata.Content,
	}, nil
}

// indexDocument runs extraction, embedding and the index write for a persisted
// document.
func (s *Service) indexDocument(ctx context.Context, doc *models.Document) (models.Metadata, error) {
	const op = "upload"

	data, err := s.files.Read(ctx, doc.FileKey)
	if err != nil {
		return models.Metadata{}, types.E(types.KindStorage, op, err)
	}

	text, err := s.extract(ctx, op, data)
	if err != nil {
		return models.Metadata{}, err
	}

	var vector []float32
	err = timed("embedding", func() (err error) {
		vector, err = s.embedder.Embed(ctx, text)
		return err
	})
	if err != nil {
		return models.Metadata{}, types.E(types.KindEmbeddingService, op, err)
	}

	metadata := s.processor.Process(text, doc.FileName, doc.UploadedAt)

	err = timed("index_upsert", func() error {
		return s.index.Upsert(ctx, models.IndexEntry{
			ID:       strconv.FormatInt(doc.ID, 10),
			Vector:   vector,
			Metadata: metadata,
		})
	})
	if err != nil {
		return models.Metadata{}, types.E(types.KindIndexWrite, op, err)
	}

	return metadata, nil
}

// rollbackUpload deletes the document record and its stored file. It runs
// even when ctx has been cancelled.
func (s *Service) rollbackUpload(ctx context.Context, doc *models.Document) {
	ctx = context.WithoutCancel(ctx)

	if err := s.docs.Delete(ctx, doc.ID); err != nil && !errors.Is(err, types.ErrNotFound) {
		s.reconcile(ctx, "upload", "orphaned document without index entry", "document_id", doc.ID, "error", err)
	}
	if err := s.files.Remove(ctx, doc.FileKey); err != nil {
		s.reconcile(ctx, "upload", "orphaned file without document", "file", doc.FileKey, "error", err)
	}
}

// extract returns the document text, failing when the PDF is unreadable
// or carries no text at all.
func (s *Service) extract(ctx context.Context, op string, data []byte) (string, error) {
	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return "", types.E(types.KindUnreadableDocument, op, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", types.E(types.KindUnreadableDocument, op, errors.New("document contains no extractable text"))
	}
	return text, nil
}
