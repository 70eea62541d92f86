package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xhad/docsearch/internal/types"
	"github.com/xhad/docsearch/pkg/config"
	"github.com/xhad/docsearch/pkg/filestore"
	"github.com/xhad/docsearch/pkg/llm"
	"github.com/xhad/docsearch/pkg/pdf"
	"github.com/xhad/docsearch/pkg/service"
	"github.com/xhad/docsearch/pkg/store"
)

// app is the wired service plus the resources to release on exit.
type app struct {
	svc   *service.Service
	pools []*pgxpool.Pool
}

func (a *app) Close() {
	for _, p := range a.pools {
		p.Close()
	}
}

// buildApp constructs every client from cfg and provisions storage.
func (c *cli) buildApp(ctx context.Context) (*app, error) {
	cfg := c.cfg
	a := &app{}

	pool, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	a.pools = append(a.pools, pool)

	indexPool := pool
	if cfg.Index.URL != "" && cfg.Index.URL != cfg.Database.URL {
		indexPool, err = store.Connect(ctx, cfg.Index.URL, cfg.Database.MaxConns)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.pools = append(a.pools, indexPool)
	}

	docs := store.NewDocumentRepository(pool)
	if err := docs.EnsureSchema(ctx); err != nil {
		a.Close()
		return nil, err
	}

	index := store.NewWithConfig(indexPool, store.VectorStoreConfig{
		TableName: cfg.Index.TableName,
		VectorDim: cfg.Index.VectorDim,
	})

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	timeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.EmbeddingModel,
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		Dimension: cfg.Index.VectorDim,
		Timeout:   timeout,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	summarizer, err := llm.NewSummarizerWithConfig(llm.SummarizerConfig{
		Provider:       cfg.LLM.Provider,
		Model:          cfg.LLM.Model,
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		Timeout:        timeout,
		AllowTruncated: cfg.LLM.AllowTruncatedSummary,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize summarizer: %w", err)
	}

	a.svc, err = service.NewWithConfig(service.Dependencies{
		Documents:  docs,
		Index:      index,
		Files:      files,
		Extractor:  pdf.NewExtractor(),
		Embedder:   embedder,
		Summarizer: summarizer,
		Logger:     c.logger,
	}, service.Config{
		Candidates:    cfg.Search.Candidates,
		MinScore:      cfg.Search.MinScore,
		MaxResults:    cfg.Search.MaxResults,
		PreviewLength: cfg.Processor.PreviewLength,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.svc.Provision(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func newFileStore(ctx context.Context, cfg *config.Config) (types.FileStore, error) {
	switch cfg.Storage.Type {
	case "s3":
		return filestore.NewS3WithConfig(ctx, filestore.S3Config{
			Bucket:         cfg.Storage.S3.Bucket,
			Region:         cfg.Storage.S3.Region,
			Endpoint:       cfg.Storage.S3.Endpoint,
			Prefix:         cfg.Storage.S3.Prefix,
			ForcePathStyle: cfg.Storage.S3.ForcePathStyle,
		})
	case "local":
		return filestore.NewLocalWithConfig(filestore.LocalConfig{Dir: cfg.Storage.Dir})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}
