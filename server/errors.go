package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xhad/docsearch/internal/types"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string     `json:"error"`
	Code  types.Kind `json:"code"`
}

// StatusFromKind maps an error kind to an HTTP status code.
func StatusFromKind(kind types.Kind) int {
	switch kind {
	case types.KindInvalidUpload, types.KindInvalidQuery, types.KindInvalidRequest, types.KindUnreadableDocument:
		return http.StatusBadRequest
	case types.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var kindMessages = map[types.Kind]string{
	types.KindInvalidUpload:      "Invalid file. Only PDF files are allowed.",
	types.KindInvalidQuery:       "Query is required",
	types.KindInvalidRequest:     "Either document_id or document_name is required",
	types.KindUnreadableDocument: "Unable to read PDF document",
	types.KindNotFound:           "Document not found",
	types.KindPartialDelete:      "Document delete operation partially failed",
}

// messageFor returns a stable message for err. Server-side failures get
// the per-operation fallback so internal details never reach the client.
func messageFor(kind types.Kind, fallback string) string {
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return fallback
}

// writeError logs err and writes the mapped response.
func (s *Server) writeError(c *gin.Context, err error, fallback string) {
	kind := types.KindOf(err)
	status := StatusFromKind(kind)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.Request.Context(), level, "request failed",
		"path", c.FullPath(),
		"kind", kind,
		"error", err,
	)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: messageFor(kind, fallback),
		Code:  kind,
	})
}
