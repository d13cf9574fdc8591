package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Index sources
const (
	IndexSourceFile     = "file"
	IndexSourcePostgres = "postgres"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Timezone string `envconfig:"TIMEZONE" default:"America/New_York"`

	KnowledgePath    string `envconfig:"KNOWLEDGE_PATH" default:"data/knowledge.yaml"`
	StatusNotePath   string `envconfig:"STATUS_NOTE_PATH"`
	SystemPromptPath string `envconfig:"SYSTEM_PROMPT_PATH"`
	DocumentsDir     string `envconfig:"DOCUMENTS_DIR" default:"data/documents"`

	IndexSource       string `envconfig:"INDEX_SOURCE" default:"file"`
	IndexVectorPath   string `envconfig:"INDEX_VECTOR_PATH" default:"data/index/vectors.bin"`
	IndexMetadataPath string `envconfig:"INDEX_METADATA_PATH" default:"data/index/chunks.jsonl"`

	DatabaseURL   string `envconfig:"DATABASE_URL"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"index"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey        string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string        `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int           `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	EmbeddingTimeout    time.Duration `envconfig:"EMBEDDING_TIMEOUT" default:"10s"`
	EmbeddingCacheSize  int           `envconfig:"EMBEDDING_CACHE_SIZE" default:"1024"`
	ChatModel           string        `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	ChatTimeout         time.Duration `envconfig:"CHAT_TIMEOUT" default:"30s"`
	ChatMaxTokens       int           `envconfig:"CHAT_MAX_TOKENS" default:"400"`

	RetrievalK       int `envconfig:"RETRIEVAL_K" default:"5"`
	MinVectorResults int `envconfig:"MIN_VECTOR_RESULTS" default:"3"`
	MaxContextChars  int `envconfig:"MAX_CONTEXT_CHARS" default:"6000"`

	// Requests per minute per asker; zero disables limiting
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`
	APIKey             string `envconfig:"API_KEY"`

	SentryDSN         string `envconfig:"SENTRY_DSN"`
	SentryEnvironment string `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("TEMPLEQA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// Validate checks settings envconfig cannot express.
func (c *Config) Validate() error {
	c.IndexSource = strings.ToLower(strings.TrimSpace(c.IndexSource))
	switch c.IndexSource {
	case IndexSourceFile:
	case IndexSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("TEMPLEQA_DATABASE_URL is required when the index source is %q", IndexSourcePostgres)
		}
	default:
		return fmt.Errorf("unknown index source %q", c.IndexSource)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.RetrievalK <= 0 {
		return fmt.Errorf("retrieval k must be positive, got %d", c.RetrievalK)
	}
	return nil
}

// Location returns the configured timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) HasS3() bool {
	return c.S3Bucket != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
