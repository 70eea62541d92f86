package pdf_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/docsearch/internal/testutil"
	"github.com/xhad/docsearch/pkg/pdf"
)

func TestExtractConcatenatesPages(t *testing.T) {
	data := testutil.BuildPDF(
		"Hello world Hello world",
		"Hello world Hello world",
		"Hello world Hello world",
	)

	text, err := pdf.NewExtractor().Extract(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, 6, strings.Count(text, "Hello world"))
	assert.Len(t, strings.Fields(text), 12, "words at page boundaries stay separate")
}

func TestExtractPageOrder(t *testing.T) {
	data := testutil.BuildPDF("alpha", "beta", "gamma")

	text, err := pdf.NewExtractor().Extract(context.Background(), data)
	require.NoError(t, err)

	a := strings.Index(text, "alpha")
	b := strings.Index(text, "beta")
	g := strings.Index(text, "gamma")
	require.True(t, a >= 0 && b >= 0 && g >= 0, "all pages extracted: %q", text)
	assert.True(t, a < b && b < g)
}

func TestExtractRejectsInvalidInput(t *testing.T) {
	valid := testutil.BuildPDF("some text")

	tests := []struct {
		name string
		data []byte
	}{
		{name: "plain text", data: []byte("this is not a pdf")},
		{name: "empty", data: nil},
		{name: "truncated", data: valid[:len(valid)/2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pdf.NewExtractor().Extract(context.Background(), tt.data)
			assert.ErrorIs(t, err, pdf.ErrUnreadable)
		})
	}
}
