package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
)

type VectorStoreConfig struct {
	TableName string
	VectorDim int
}

// VectorStore is a pgvector-backed index of document embeddings keyed by
// document identifier. Similarity is cosine.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

var _ types.VectorIndex = (*VectorStore)(nil)

func NewWithConfig(pool *pgxpool.Pool, config VectorStoreConfig) *VectorStore {
	if config.TableName == "" {
		config.TableName = "smart_doc_search"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536 // Default for OpenAI embeddings
	}

	return &VectorStore{
		config: config,
		pool:   pool,
	}
}

// EnsureIndex provisions the extension, table and HNSW index. Every
// statement is IF NOT EXISTS so repeated calls are no-ops.
func (vs *VectorStore) EnsureIndex(ctx context.Context) error {
	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING hnsw (embedding vector_cosine_ops)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (vs *VectorStore) Upsert(ctx context.Context, entry models.IndexEntry) error {
	if len(entry.Vector) != vs.config.VectorDim {
		return fmt.Errorf("vector has %d dimensions, index expects %d", len(entry.Vector), vs.config.VectorDim)
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			updated_at = now()`,
		vs.config.TableName)

	_, err = vs.pool.Exec(ctx, stmt, entry.ID, pgvector.NewVector(entry.Vector), metadata)
	if err != nil {
		return fmt.Errorf("failed to upsert entry %s: %w", entry.ID, err)
	}

	return nil
}

func (vs *VectorStore) Query(ctx context.Context, vector []float32, topK int) ([]models.IndexMatch, error) {
	if topK <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, 1 - (embedding <=> $1) AS score, metadata
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	defer rows.Close()

	var matches []models.IndexMatch
	for rows.Next() {
		var (
			match    models.IndexMatch
			metadata []byte
		)
		if err := rows.Scan(&match.ID, &match.Score, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal(metadata, &match.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", match.ID, err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return matches, nil
}

// Delete removes the entries for ids. Unknown ids are ignored.
func (vs *VectorStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", vs.config.TableName)
	if _, err := vs.pool.Exec(ctx, stmt, ids); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}

	return nil
}
