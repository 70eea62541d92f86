package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/xhad/docsearch/pkg/llm"
)

type fakeEmbeddingClient struct {
	vector []float32
	err    error
	inputs []string
}

func (f *fakeEmbeddingClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	f.inputs = append(f.inputs, texts...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func newEmbedder(t *testing.T, client *fakeEmbeddingClient, dim int) *llm.Embedder {
	t.Helper()
	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
	require.NoError(t, err)
	return llm.NewEmbedder(emb, llm.EmbedderConfig{Dimension: dim})
}

func TestEmbed(t *testing.T) {
	client := &fakeEmbeddingClient{vector: []float32{0.1, 0.2, 0.3}}
	emb := newEmbedder(t, client, 3)

	vector, err := emb.Embed(context.Background(), "first line\nsecond line")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, []string{"first line\nsecond line"}, client.inputs)
}

func TestEmbedErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeEmbeddingClient
		dim    int
		target error
	}{
		{
			name:   "service failure",
			client: &fakeEmbeddingClient{err: errors.New("503 service unavailable")},
			dim:    3,
		},
		{
			name:   "empty vector",
			client: &fakeEmbeddingClient{vector: []float32{}},
			dim:    3,
		},
		{
			name:   "wrong dimension",
			client: &fakeEmbeddingClient{vector: []float32{1, 2}},
			dim:    3,
			target: llm.ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEmbedder(t, tt.client, tt.dim).Embed(context.Background(), "text")
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestEmbedWithoutDimensionCheck(t *testing.T) {
	client := &fakeEmbeddingClient{vector: []float32{1, 2}}

	vector, err := newEmbedder(t, client, 0).Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, vector, 2)
}

func TestNewEmbedderWithConfigUnknownProvider(t *testing.T) {
	_, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{Provider: "bard"})
	assert.Error(t, err)
}

func TestNewEmbedderWithConfigOllama(t *testing.T) {
	emb, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Provider: llm.ProviderOllama,
		BaseURL:  "http://localhost:11434",
	})
	assert.NoError(t, err)
	assert.NotNil(t, emb)
}
