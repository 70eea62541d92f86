package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr                string `yaml:"addr"`
		MaxUploadMB         int    `yaml:"max_upload_mb"`
		ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
	} `yaml:"server"`

	Database struct {
		URL      string `yaml:"url"`
		MaxConns int32  `yaml:"max_conns"`
	} `yaml:"database"`

	Index struct {
		// URL defaults to Database.URL; the index may live in a separate
		// pgvector deployment.
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		VectorDim int    `yaml:"vector_dim"`
	} `yaml:"index"`

	LLM struct {
		Provider              string  `yaml:"provider"`
		BaseURL               string  `yaml:"base_url"`
		APIKey                string  `yaml:"api_key"`
		Model                 string  `yaml:"model"`
		EmbeddingModel        string  `yaml:"embedding_model"`
		MaxTokens             int     `yaml:"max_tokens"`
		Temperature           float64 `yaml:"temperature"`
		TimeoutSecs           int     `yaml:"timeout_secs"`
		AllowTruncatedSummary bool    `yaml:"allow_truncated_summary"`
	} `yaml:"llm"`

	Storage struct {
		Type string `yaml:"type"`
		Dir  string `yaml:"dir"`
		S3   struct {
			Bucket         string `yaml:"bucket"`
			Region         string `yaml:"region"`
			Endpoint       string `yaml:"endpoint"`
			Prefix         string `yaml:"prefix"`
			ForcePathStyle bool   `yaml:"force_path_style"`
		} `yaml:"s3"`
	} `yaml:"storage"`

	Search struct {
		Candidates int      `yaml:"candidates"`
		MinScore   *float64 `yaml:"min_score"`
		MaxResults int      `yaml:"max_results"`
	} `yaml:"search"`

	Processor struct {
		PreviewLength int `yaml:"preview_length"`
	} `yaml:"processor"`

	Crawler struct {
		MaxDepth     int     `yaml:"max_depth"`
		MaxPDFs      int     `yaml:"max_pdfs"`
		RateLimit    float64 `yaml:"rate_limit"`
		TimeoutSecs  int     `yaml:"timeout_secs"`
		ExternalPDFs bool    `yaml:"external_pdfs"`
	} `yaml:"crawler"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/docsearch/config.yaml"),
			"/etc/docsearch/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = ":8000"
	}
	if config.Server.MaxUploadMB == 0 {
		config.Server.MaxUploadMB = 32
	}
	if config.Server.ShutdownTimeoutSecs == 0 {
		config.Server.ShutdownTimeoutSecs = 10
	}

	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = 10
	}

	if config.Index.URL == "" {
		config.Index.URL = config.Database.URL
	}
	if config.Index.TableName == "" {
		config.Index.TableName = "smart_doc_search"
	}
	if config.Index.VectorDim == 0 {
		config.Index.VectorDim = 1536
	}

	if config.LLM.Provider == "" {
		config.LLM.Provider = "openai"
	}
	if config.LLM.Model == "" {
		switch config.LLM.Provider {
		case "ollama":
			config.LLM.Model = "mistral"
		default:
			config.LLM.Model = "gpt-4o-mini"
		}
	}
	if config.LLM.EmbeddingModel == "" {
		switch config.LLM.Provider {
		case "ollama":
			config.LLM.EmbeddingModel = "nomic-embed-text:latest"
		default:
			config.LLM.EmbeddingModel = "text-embedding-ada-002"
		}
	}
	if config.LLM.BaseURL == "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 150
	}
	if config.LLM.TimeoutSecs == 0 {
		config.LLM.TimeoutSecs = 60
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}
	if config.Storage.Dir == "" {
		config.Storage.Dir = "media"
	}

	if config.Search.Candidates == 0 {
		config.Search.Candidates = 10
	}
	if config.Search.MinScore == nil {
		minScore := 0.8
		config.Search.MinScore = &minScore
	}
	if config.Search.MaxResults == 0 {
		config.Search.MaxResults = 5
	}

	if config.Processor.PreviewLength == 0 {
		config.Processor.PreviewLength = 1000
	}

	if config.Crawler.MaxDepth == 0 {
		config.Crawler.MaxDepth = 1
	}
	if config.Crawler.MaxPDFs == 0 {
		config.Crawler.MaxPDFs = 50
	}
	if config.Crawler.RateLimit == 0 {
		config.Crawler.RateLimit = 2.0
	}
	if config.Crawler.TimeoutSecs == 0 {
		config.Crawler.TimeoutSecs = 30
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if indexURL := os.Getenv("DOCSEARCH_INDEX_URL"); indexURL != "" {
		config.Index.URL = indexURL
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && config.LLM.APIKey == "" {
		config.LLM.APIKey = key
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if provider := os.Getenv("DOCSEARCH_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if dir := os.Getenv("DOCSEARCH_STORAGE_DIR"); dir != "" {
		config.Storage.Dir = dir
	}
	if bucket := os.Getenv("DOCSEARCH_S3_BUCKET"); bucket != "" {
		config.Storage.Type = "s3"
		config.Storage.S3.Bucket = bucket
	}
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			config.Server.Addr = ":" + port
		}
	}
	if level := os.Getenv("DOCSEARCH_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}
