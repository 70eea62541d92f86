package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

var (
	ErrEmptySummary = errors.New("model returned an empty summary")
	ErrTruncated    = errors.New("summary was truncated by the token limit")
)

// ContentGenerator is the subset of llms.Model the summarizer needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// SummarizerConfig represents the configuration for a summarizer.
type SummarizerConfig struct {
	Provider       string
	Model          string
	BaseURL        string
	APIKey         string
	Temperature    float64
	MaxTokens      int
	SystemTemplate string
	Timeout        time.Duration
	// AllowTruncated accepts a summary cut short by MaxTokens instead of
	// reporting ErrTruncated.
	AllowTruncated bool
}

// Summarizer produces short natural-language summaries with a chat model.
type Summarizer struct {
	config SummarizerConfig
	llm    ContentGenerator
}

// NewSummarizerWithConfig creates a new Summarizer with the given configuration.
func NewSummarizerWithConfig(config SummarizerConfig) (*Summarizer, error) {
	if config.Provider == "" {
		config.Provider = ProviderOpenAI
	}
	if config.Model == "" {
		switch config.Provider {
		case ProviderOllama:
			config.Model = "mistral"
		default:
			config.Model = "gpt-4o-mini"
		}
	}

	model, err := newChatModel(config)
	if err != nil {
		return nil, err
	}

	return NewSummarizer(model, config)
}

// NewSummarizer wraps an existing model.
func NewSummarizer(model ContentGenerator, config SummarizerConfig) (*Summarizer, error) {
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 150
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "Summarize the following document:"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Summarizer{
		config: config,
		llm:    model,
	}, nil
}

// Summarize returns a short summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, s.config.SystemTemplate),
		llms.TextParts(schema.ChatMessageTypeHuman, text),
	}

	opts := []llms.CallOption{llms.WithMaxTokens(s.config.MaxTokens)}
	if s.config.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(s.config.Temperature))
	}

	response, err := s.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", ErrEmptySummary
	}

	choice := response.Choices[0]
	if isTruncated(choice.StopReason) && !s.config.AllowTruncated {
		return "", ErrTruncated
	}

	summary := strings.TrimSpace(choice.Content)
	if summary == "" {
		return "", ErrEmptySummary
	}

	return summary, nil
}

func isTruncated(stopReason string) bool {
	switch strings.ToLower(stopReason) {
	case "length", "max_tokens":
		return true
	}
	return false
}
