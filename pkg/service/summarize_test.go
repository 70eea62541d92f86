package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/docsearch/internal/types"
	"github.com/xhad/docsearch/pkg/service"
)

func TestSummarize(t *testing.T) {
	h := newHarness(t)
	doc := h.upload(t, "Greeting.pdf", "Hello world")

	summary, err := h.svc.Summarize(context.Background(), service.SummarizeRequest{DocumentID: &doc.ID})
	require.NoError(t, err)
	assert.Equal(t, "A greeting repeated.", summary)
	assert.Contains(t, h.summarizer.Input, "Hello world")

	summary, err = h.svc.Summarize(context.Background(), service.SummarizeRequest{DocumentName: "greeting.PDF"})
	require.NoError(t, err)
	assert.Equal(t, "A greeting repeated.", summary)
}

func TestSummarizeFailures(t *testing.T) {
	unknown := int64(404)

	tests := []struct {
		name  string
		req   service.SummarizeRequest
		setup func(h *harness)
		kind  types.Kind
	}{
		{
			name: "no identifier",
			req:  service.SummarizeRequest{DocumentName: "  "},
			kind: types.KindInvalidRequest,
		},
		{
			name: "unknown id",
			req:  service.SummarizeRequest{DocumentID: &unknown},
			kind: types.KindNotFound,
		},
		{
			name: "unknown name",
			req:  service.SummarizeRequest{DocumentName: "missing.pdf"},
			kind: types.KindNotFound,
		},
		{
			name:  "summarizer error",
			req:   service.SummarizeRequest{DocumentName: "hello.pdf"},
			setup: func(h *harness) { h.summarizer.Err = errors.New("truncated") },
			kind:  types.KindSummarizationService,
		},
		{
			name: "stored file missing",
			req:  service.SummarizeRequest{DocumentName: "hello.pdf"},
			setup: func(h *harness) {
				doc, err := h.docs.FindByName(context.Background(), "hello.pdf")
				if err == nil {
					h.files.Remove(context.Background(), doc.FileKey)
				}
			},
			kind: types.KindUnreadableDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.upload(t, "hello.pdf", "Hello world")
			if tt.setup != nil {
				tt.setup(h)
			}

			_, err := h.svc.Summarize(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, types.KindOf(err))
		})
	}
}
