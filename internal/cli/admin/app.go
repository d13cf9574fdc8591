package admin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cloo-solutions/templeqa/internal/config"
	"github.com/cloo-solutions/templeqa/internal/database"
	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/index"
	"github.com/cloo-solutions/templeqa/internal/intent"
	"github.com/cloo-solutions/templeqa/internal/knowledge"
	templeopenai "github.com/cloo-solutions/templeqa/internal/openai"
	"github.com/cloo-solutions/templeqa/internal/query"
	"github.com/cloo-solutions/templeqa/internal/repository"
	"github.com/cloo-solutions/templeqa/internal/service"
	"github.com/cloo-solutions/templeqa/internal/storage"
)

// corpus is the loaded document index: the searcher plus the chunk list the
// keyword retriever scans.
type corpus struct {
	searcher service.VectorSearcher
	chunks   []domain.Chunk
}

func (c *corpus) Len() int { return len(c.chunks) }

// app holds the wired answering pipeline shared by serve and ask.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	knowledge  *domain.Knowledge
	chain      *intent.Chain
	schedule   *intent.Schedule
	corpus     *corpus
	dispatcher *service.Dispatcher
	pool       *pgxpool.Pool
}

type appOptions struct {
	noMigrate bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	k, err := knowledge.Load(cfg.KnowledgePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge: %w", err)
	}
	logger.Info("knowledge loaded", zap.String("path", cfg.KnowledgePath), zap.String("temple", k.Temple.Name))

	a := &app{cfg: cfg, logger: logger, knowledge: k}

	a.corpus, err = a.loadCorpus(ctx, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("document index loaded", zap.String("source", cfg.IndexSource), zap.Int("chunks", a.corpus.Len()))

	var embedder service.EmbeddingClient
	var generator service.Generator
	if cfg.HasOpenAI() {
		cached, err := templeopenai.NewCachedEmbedder(newEmbeddingClient(cfg), cfg.EmbeddingCacheSize)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create embedding cache: %w", err)
		}
		embedder = cached
		generator = templeopenai.NewChatClient(templeopenai.ChatConfig{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.ChatModel,
			MaxTokens: cfg.ChatMaxTokens,
			Timeout:   cfg.ChatTimeout,
		})
	} else {
		logger.Warn("no OpenAI key configured, unmatched questions get the fallback answer")
	}

	a.schedule = intent.NewSchedule(k)
	a.chain = intent.NewDefaultChain(k, logger)

	retriever := service.NewHybridRetriever(
		embedder,
		service.NewVectorRetriever(a.corpus.searcher, a.corpus.chunks),
		service.NewKeywordRetriever(a.corpus.chunks),
		cfg.MinVectorResults,
		logger,
	)
	composer := service.NewComposer(generator, a.schedule, service.ComposerConfig{
		TempleName:      k.Temple.Name,
		SystemPrompt:    readOptional(cfg.SystemPromptPath, logger),
		StatusNote:      readOptional(cfg.StatusNotePath, logger),
		MaxContextChars: cfg.MaxContextChars,
	}, logger)

	a.dispatcher = service.NewDispatcher(a.chain, query.NewExpander(query.DefaultMaxAliasTerms), retriever, composer,
		service.DispatcherConfig{Location: cfg.Location(), RetrievalK: cfg.RetrievalK}, logger)
	return a, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *app) loadCorpus(ctx context.Context, opts appOptions) (*corpus, error) {
	if a.cfg.IndexSource == config.IndexSourcePostgres {
		pool, err := a.openDatabase(ctx, opts)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		repo := repository.NewChunkRepository(pool)
		n, err := repo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count chunks: %w", err)
		}
		if n == 0 {
			a.logger.Warn("postgres corpus is empty, answering from structured knowledge only")
			return &corpus{}, nil
		}
		chunks, err := repo.AllChunks(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load chunks: %w", err)
		}
		return &corpus{searcher: repo, chunks: chunks}, nil
	}

	idx, err := a.openFileIndex(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("document index not found, answering from structured knowledge only",
			zap.String("vectors", a.cfg.IndexVectorPath), zap.String("metadata", a.cfg.IndexMetadataPath))
		return &corpus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document index: %w", err)
	}
	return &corpus{searcher: idx, chunks: idx.Chunks()}, nil
}

func (a *app) openFileIndex(ctx context.Context) (*index.FileIndex, error) {
	if !a.cfg.HasS3() {
		return index.Open(a.cfg.IndexVectorPath, a.cfg.IndexMetadataPath)
	}

	s3Client, err := newS3Client(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	vec, meta, err := s3Client.OpenIndex(ctx)
	if err != nil {
		return nil, err
	}
	defer vec.Close()
	defer meta.Close()
	return index.Read(vec, meta)
}

func (a *app) openDatabase(ctx context.Context, opts appOptions) (*pgxpool.Pool, error) {
	if !opts.noMigrate {
		if err := database.Migrate(a.cfg.DatabaseURL, a.cfg.MigrationsDir, a.logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	pool, err := database.NewPool(ctx, database.Config{URL: a.cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}
	a.logger.Info("connected to database")
	return pool, nil
}

func newEmbeddingClient(cfg *config.Config) *templeopenai.Client {
	return templeopenai.NewClientWithConfig(templeopenai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      openai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		Timeout:             cfg.EmbeddingTimeout,
	})
}

func newS3Client(ctx context.Context, cfg *config.Config) (*storage.S3Client, error) {
	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		Prefix:          cfg.S3Prefix,
		UsePathStyle:    cfg.S3Endpoint != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return client, nil
}

// readOptional returns the trimmed contents of path, or "" when path is
// unset or unreadable.
func readOptional(path string, logger *zap.Logger) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read optional file", zap.String("path", path), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(string(data))
}
