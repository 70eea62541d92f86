package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/testutil"
	"github.com/xhad/docsearch/internal/types"
	"github.com/xhad/docsearch/pkg/observability"
	"github.com/xhad/docsearch/pkg/pdf"
	"github.com/xhad/docsearch/pkg/service"
	"github.com/xhad/docsearch/pkg/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const dim = 64

type harness struct {
	svc        *service.Service
	docs       *memory.DocumentStore
	index      *memory.VectorIndex
	faultyDocs *testutil.Documents
	faultyIdx  *testutil.Index
	files      *testutil.Files
	embedder   *testutil.Embedder
	summarizer *testutil.Summarizer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithConfig(t, service.Config{})
}

func newHarnessWithConfig(t *testing.T, config service.Config) *harness {
	t.Helper()

	h := &harness{
		docs:       memory.NewDocumentStore(),
		index:      memory.NewVectorIndex(dim),
		files:      testutil.NewFiles(),
		embedder:   testutil.NewEmbedder(dim),
		summarizer: &testutil.Summarizer{Summary: "A greeting repeated."},
	}
	h.faultyDocs = &testutil.Documents{DocumentStore: h.docs}
	h.faultyIdx = &testutil.Index{VectorIndex: h.index}

	svc, err := service.NewWithConfig(service.Dependencies{
		Documents:  h.faultyDocs,
		Index:      h.faultyIdx,
		Files:      h.files,
		Extractor:  pdf.NewExtractor(),
		Embedder:   h.embedder,
		Summarizer: h.summarizer,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, config)
	require.NoError(t, err)
	require.NoError(t, svc.Provision(context.Background()))

	h.svc = svc
	return h
}

// assertEmpty checks that no document, file or index entry exists.
func (h *harness) assertEmpty(t *testing.T) {
	t.Helper()
	assert.Equal(t, 0, h.docs.Len(), "documents")
	assert.Equal(t, 0, h.files.Len(), "files")
	assert.Equal(t, 0, h.index.Len(), "index entries")
}

func (h *harness) upload(t *testing.T, name string, pages ...string) *models.UploadResult {
	t.Helper()
	res, err := h.svc.Upload(context.Background(), name, testutil.BuildPDF(pages...))
	require.NoError(t, err)
	return res
}

func TestNewWithConfig(t *testing.T) {
	_, err := service.NewWithConfig(service.Dependencies{}, service.Config{})
	assert.Error(t, err)

	h := newHarness(t)
	_, err = service.NewWithConfig(service.Dependencies{
		Documents: h.docs,
		Index:     h.index,
		Files:     h.files,
		Extractor: pdf.NewExtractor(),
		Embedder:  h.embedder,
	}, service.Config{Candidates: 3, MaxResults: 5})
	assert.Error(t, err, "max results may not exceed candidates")

	tooHigh := 1.2
	_, err = service.NewWithConfig(service.Dependencies{
		Documents: h.docs,
		Index:     h.index,
		Files:     h.files,
		Extractor: pdf.NewExtractor(),
		Embedder:  h.embedder,
	}, service.Config{MinScore: &tooHigh})
	assert.Error(t, err)
}

func TestUploadThreePagePDF(t *testing.T) {
	h := newHarness(t)
	page := strings.Repeat("Hello world ", 60)
	data := testutil.BuildPDF(page, page, page)

	res, err := h.svc.Upload(context.Background(), "hello.pdf", data)
	require.NoError(t, err)

	text, err := pdf.NewExtractor().Extract(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, len(strings.Fields(text)), res.WordCount)
	assert.Equal(t, 360, res.WordCount)
	assert.Len(t, []rune(res.ContentPreview), 1000)
	assert.Equal(t, string([]rune(text)[:1000]), res.ContentPreview)

	assert.NotZero(t, res.ID)
	assert.Equal(t, "hello.pdf", res.FileName)
	assert.True(t, h.files.Has(res.FileKey))
	assert.True(t, h.index.Has(fmt.Sprint(res.ID)))
}

func TestUploadStripsDirectories(t *testing.T) {
	h := newHarness(t)
	res := h.upload(t, "../../tmp/report.pdf", "quarterly report")
	assert.Equal(t, "report.pdf", res.FileName)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
	}{
		{name: "text file", fileName: "notes.txt", data: []byte("just some notes")},
		{name: "pdf extension with text body", fileName: "fake.pdf", data: []byte("just some notes")},
		{name: "pdf body with wrong extension", fileName: "doc.txt", data: testutil.BuildPDF("hello")},
		{name: "empty body", fileName: "empty.pdf", data: nil},
		{name: "missing name", fileName: "", data: testutil.BuildPDF("hello")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			_, err := h.svc.Upload(context.Background(), tt.fileName, tt.data)
			require.Error(t, err)
			assert.Equal(t, types.KindInvalidUpload, types.KindOf(err))
			assert.Equal(t, 0, h.embedder.Calls())
			h.assertEmpty(t)
		})
	}
}

func TestUploadUppercaseExtension(t *testing.T) {
	h := newHarness(t)
	res := h.upload(t, "SCAN.PDF", "scanned page")
	assert.Equal(t, "SCAN.PDF", res.FileName)
}

func TestUploadRollback(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		data  []byte
		kind  types.Kind
	}{
		{
			name:  "index upsert fails",
			setup: func(h *harness) { h.faultyIdx.UpsertErr = errors.New("index unavailable") },
			data:  testutil.BuildPDF("Hello world"),
			kind:  types.KindIndexWrite,
		},
		{
			name:  "embedding fails",
			setup: func(h *harness) { h.embedder.Err = errors.New("rate limited") },
			data:  testutil.BuildPDF("Hello world"),
			kind:  types.KindEmbeddingService,
		},
		{
			name:  "corrupt pdf",
			setup: func(h *harness) {},
			data:  []byte("%PDF-1.4\nthis is not really a pdf"),
			kind:  types.KindUnreadableDocument,
		},
		{
			name:  "no text",
			setup: func(h *harness) {},
			data:  testutil.BuildPDF("   "),
			kind:  types.KindUnreadableDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			_, err := h.svc.Upload(context.Background(), "doc.pdf", tt.data)
			require.Error(t, err)
			assert.Equal(t, tt.kind, types.KindOf(err))
			h.assertEmpty(t)
		})
	}
}

func TestUploadRollbackFailureIsCounted(t *testing.T) {
	h := newHarness(t)
	h.faultyIdx.UpsertErr = errors.New("index unavailable")
	h.faultyDocs.DeleteErr = errors.New("connection lost")

	before := promtest.ToFloat64(observability.Inconsistencies.WithLabelValues("upload"))

	_, err := h.svc.Upload(context.Background(), "doc.pdf", testutil.BuildPDF("Hello world"))
	require.Error(t, err)
	assert.Equal(t, types.KindIndexWrite, types.KindOf(err))

	assert.Equal(t, before+1, promtest.ToFloat64(observability.Inconsistencies.WithLabelValues("upload")))
	assert.Equal(t, 1, h.docs.Len(), "record could not be removed")
	assert.Equal(t, 0, h.files.Len())
}

func TestUploadRecordInsertFails(t *testing.T) {
	h := newHarness(t)
	h.faultyDocs.CreateErr = errors.New("disk full")

	_, err := h.svc.Upload(context.Background(), "doc.pdf", testutil.BuildPDF("Hello world"))
	require.Error(t, err)
	assert.Equal(t, types.KindStorage, types.KindOf(err))
	h.assertEmpty(t)
}

func TestUploadCancelledContextStillRollsBack(t *testing.T) {
	h := newHarness(t)
	h.faultyIdx.UpsertErr = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.svc.Upload(ctx, "doc.pdf", testutil.BuildPDF("Hello world"))
	require.Error(t, err)
	h.assertEmpty(t)
}
