package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Database config
	if c.Database.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "database URL is required",
		})
	} else if u, err := url.Parse(c.Database.URL); err != nil || u.Scheme == "" {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "invalid database URL",
		})
	}

	if c.Database.MaxConns < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.max_conns",
			Message: "max_conns must be positive",
		})
	}

	// Validate Index config
	if c.Index.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "index.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if !isIdentifier(c.Index.TableName) {
		errors = append(errors, ValidationError{
			Field:   "index.table_name",
			Message: fmt.Sprintf("invalid table name: %q", c.Index.TableName),
		})
	}

	// Validate LLM config
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.api_key",
				Message: "OpenAI API key is required",
			})
		}
	case "ollama":
		if c.LLM.BaseURL == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "Ollama base URL is required",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider: %s", c.LLM.Provider),
		})
	}

	if c.LLM.BaseURL != "" {
		if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "invalid LLM base URL",
			})
		}
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate Storage config
	switch c.Storage.Type {
	case "local":
		if c.Storage.Dir == "" {
			errors = append(errors, ValidationError{
				Field:   "storage.dir",
				Message: "storage dir is required",
			})
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			errors = append(errors, ValidationError{
				Field:   "storage.s3.bucket",
				Message: "bucket is required for s3 storage",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "storage.type",
			Message: fmt.Sprintf("unknown storage type: %s", c.Storage.Type),
		})
	}

	// Validate Search config
	if s := c.Search.MinScore; s != nil && (*s < 0 || *s > 1) {
		errors = append(errors, ValidationError{
			Field:   "search.min_score",
			Message: "min_score must be between 0 and 1",
		})
	}

	if c.Search.MaxResults < 1 || c.Search.Candidates < c.Search.MaxResults {
		errors = append(errors, ValidationError{
			Field:   "search.max_results",
			Message: "max_results must be positive and not exceed candidates",
		})
	}

	if c.Processor.PreviewLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.preview_length",
			Message: "preview_length must be positive",
		})
	}

	if c.Crawler.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "crawler.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid log level: %s", c.Log.Level),
		})
	}

	return errors
}

// isIdentifier accepts plain lower-case SQL identifiers; the table name is
// interpolated into DDL and cannot be passed as a bind parameter.
func isIdentifier(s string) bool {
	if s == "" || len(s) > 63 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
