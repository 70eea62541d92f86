package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

func newEmbeddingClient(config EmbedderConfig) (embeddings.EmbedderClient, error) {
	switch config.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(config.APIKey),
			openai.WithEmbeddingModel(config.Model),
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		client, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai client: %w", err)
		}
		return client, nil
	case ProviderOllama:
		client, err := ollama.New(ollamaOptions(config.Model, config.BaseURL)...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", config.Provider)
	}
}

func newChatModel(config SummarizerConfig) (ContentGenerator, error) {
	switch config.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(config.APIKey),
			openai.WithModel(config.Model),
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai client: %w", err)
		}
		return model, nil
	case ProviderOllama:
		model, err := ollama.New(ollamaOptions(config.Model, config.BaseURL)...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", config.Provider)
	}
}

func ollamaOptions(model, baseURL string) []ollama.Option {
	opts := []ollama.Option{ollama.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}
	return opts
}
