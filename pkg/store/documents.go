package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
)

// DocumentRepository persists Document records in PostgreSQL.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

var _ types.DocumentStore = (*DocumentRepository)(nil)

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// EnsureSchema creates the documents table if it does not exist.
func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			file_name TEXT NOT NULL,
			file_key TEXT NOT NULL UNIQUE,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS documents_file_name_lower_idx
		ON documents (lower(file_name))`)
	if err != nil {
		return fmt.Errorf("failed to create documents index: %w", err)
	}

	return nil
}

// Create inserts doc and fills in the assigned ID and upload time.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (file_name, file_key)
		VALUES ($1, $2)
		RETURNING id, uploaded_at`,
		doc.FileName, doc.FileKey,
	).Scan(&doc.ID, &doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	doc.UploadedAt = doc.UploadedAt.UTC()
	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, id int64) (*models.Document, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, file_name, file_key, uploaded_at
		FROM documents
		WHERE id = $1`, id))
}

// FindByName matches the original file name or the stored key,
// case-insensitively. The most recent upload wins.
func (r *DocumentRepository) FindByName(ctx context.Context, name string) (*models.Document, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, file_name, file_key, uploaded_at
		FROM documents
		WHERE lower(file_name) = lower($1) OR lower(file_key) = lower($1)
		ORDER BY uploaded_at DESC, id DESC
		LIMIT 1`, name))
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete document %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) scanOne(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	if err := row.Scan(&doc.ID, &doc.FileName, &doc.FileKey, &doc.UploadedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	doc.UploadedAt = doc.UploadedAt.UTC()
	return &doc, nil
}
