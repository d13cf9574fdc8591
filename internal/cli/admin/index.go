package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/templeqa/internal/config"
	"github.com/cloo-solutions/templeqa/internal/database"
	"github.com/cloo-solutions/templeqa/internal/index"
	"github.com/cloo-solutions/templeqa/internal/repository"
	"github.com/cloo-solutions/templeqa/internal/service"
)

// IndexCmd returns the index command
func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the document index",
		Long: `Chunk and embed every .txt and .md file in the documents directory.

The index is written where TEMPLEQA_INDEX_SOURCE points: the vector and
metadata files, or the document_chunks table. With --upload the files are
also copied to the configured S3 bucket.`,
		RunE: runIndex,
	}

	cmd.Flags().String("dir", "", "Documents directory (overrides TEMPLEQA_DOCUMENTS_DIR)")
	cmd.Flags().Bool("upload", false, "Upload the index files to S3 after writing")
	cmd.Flags().Int("max-chars", service.DefaultChunkConfig().MaxChars, "Maximum characters per chunk")
	cmd.Flags().Int("overlap", service.DefaultChunkConfig().Overlap, "Characters shared between neighboring chunks")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, shutdown, err := bootstrap()
	if err != nil {
		return err
	}
	defer shutdown()

	if !cfg.HasOpenAI() {
		return fmt.Errorf("TEMPLEQA_OPENAI_API_KEY is required to build the index")
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.DocumentsDir
	}
	upload, _ := cmd.Flags().GetBool("upload")
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	chunkCfg := service.DefaultChunkConfig()
	chunkCfg.MaxChars, _ = cmd.Flags().GetInt("max-chars")
	chunkCfg.Overlap, _ = cmd.Flags().GetInt("overlap")

	if upload && !cfg.HasS3() {
		return fmt.Errorf("--upload requires TEMPLEQA_S3_BUCKET")
	}

	docs, err := service.LoadDocuments(dir)
	if err != nil {
		return err
	}
	log.Info("documents loaded", zap.String("dir", dir), zap.Int("documents", len(docs)))

	writer, closeWriter, err := corpusWriter(ctx, cfg, log, noMigrate)
	if err != nil {
		return err
	}
	defer closeWriter()

	builder := service.NewIndexBuilder(newEmbeddingClient(cfg), chunkCfg, log)
	chunks, err := builder.Build(ctx, docs, writer)
	if err != nil {
		return err
	}

	if upload && cfg.IndexSource == config.IndexSourceFile {
		s3Client, err := newS3Client(ctx, cfg)
		if err != nil {
			return err
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		if err := s3Client.UploadIndex(ctx, cfg.IndexVectorPath, cfg.IndexMetadataPath); err != nil {
			return err
		}
		log.Info("index uploaded", zap.String("bucket", cfg.S3Bucket), zap.String("prefix", cfg.S3Prefix))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %d documents\n", len(chunks), len(docs))
	return nil
}

func corpusWriter(ctx context.Context, cfg *config.Config, log *zap.Logger, noMigrate bool) (service.CorpusWriter, func(), error) {
	if cfg.IndexSource != config.IndexSourcePostgres {
		return index.FileWriter{VectorPath: cfg.IndexVectorPath, MetadataPath: cfg.IndexMetadataPath}, func() {}, nil
	}

	if !noMigrate {
		if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsDir, log); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, err
	}
	return repository.NewChunkRepository(pool), pool.Close, nil
}
