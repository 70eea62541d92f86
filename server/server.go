// Package server exposes the document workflows over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
	"github.com/xhad/docsearch/pkg/observability"
	"github.com/xhad/docsearch/pkg/service"
)

// DocumentService is the set of workflows the handlers call.
type DocumentService interface {
	Upload(ctx context.Context, fileName string, data []byte) (*models.UploadResult, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Summarize(ctx context.Context, req service.SummarizeRequest) (string, error)
	Delete(ctx context.Context, id int64) error
}

type Config struct {
	Addr            string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

type Server struct {
	config Config
	svc    DocumentService
	logger *slog.Logger
	router *gin.Engine
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	Results []models.SearchResult `json:"results"`
}

type SummarizeRequest struct {
	DocumentID   *int64 `json:"document_id"`
	DocumentName string `json:"document_name"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

func NewWithConfig(svc DocumentService, logger *slog.Logger, config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":8000"
	}
	if config.MaxUploadBytes == 0 {
		config.MaxUploadBytes = 32 << 20
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		svc:    svc,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), observability.Metrics(), observability.RequestLogger(s.logger))

	r.POST("/upload/", s.handleUpload)
	r.POST("/search/", s.handleSearch)
	r.POST("/summarize/", s.handleSummarize)
	r.DELETE("/documents/:id/", s.handleDelete)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "File too large",
				Code:  types.KindInvalidUpload,
			})
			return
		}
		s.writeError(c, types.E(types.KindInvalidUpload, "upload", err), "Upload failed")
		return
	}

	f, err := header.Open()
	if err != nil {
		s.writeError(c, types.E(types.KindInvalidUpload, "upload", err), "Upload failed")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(c, types.E(types.KindInvalidUpload, "upload", err), "Upload failed")
		return
	}

	result, err := s.svc.Upload(c.Request.Context(), header.Filename, data)
	if err != nil {
		s.writeError(c, err, "Upload failed")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, types.E(types.KindInvalidQuery, "search", err), "Search operation failed")
		return
	}

	results, err := s.svc.Search(c.Request.Context(), req.Query)
	if err != nil {
		s.writeError(c, err, "Search operation failed")
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	c.JSON(http.StatusOK, SearchResponse{Results: results})
}

func (s *Server) handleSummarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, types.E(types.KindInvalidRequest, "summarize", err), "Summarization failed")
		return
	}

	summary, err := s.svc.Summarize(c.Request.Context(), service.SummarizeRequest{
		DocumentID:   req.DocumentID,
		DocumentName: req.DocumentName,
	})
	if err != nil {
		s.writeError(c, err, "Summarization failed")
		return
	}

	c.JSON(http.StatusOK, SummarizeResponse{Summary: summary})
}

func (s *Server) handleDelete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.writeError(c, types.E(types.KindNotFound, "delete", err), "Document delete operation failed")
		return
	}

	if err := s.svc.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err, "Document delete operation failed")
		return
	}

	c.Status(http.StatusNoContent)
}
