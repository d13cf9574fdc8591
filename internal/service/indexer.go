package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// chunkNamespace scopes the name-based chunk ids.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("templeqa/chunks"))

// documentExtensions are the file types the builder reads.
var documentExtensions = map[string]struct{}{".txt": {}, ".md": {}}

// BatchEmbedder embeds many texts in one call.
type BatchEmbedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// CorpusWriter persists a built corpus. The file index writer and the
// Postgres repository implement it.
type CorpusWriter interface {
	ReplaceAll(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
}

// Document is a source text before chunking.
type Document struct {
	Source string
	Text   string
}

// IndexBuilder chunks documents, embeds the chunks and writes the corpus.
type IndexBuilder struct {
	embedder BatchEmbedder
	chunkCfg ChunkConfig
	logger   *zap.Logger
}

func NewIndexBuilder(embedder BatchEmbedder, cfg ChunkConfig, logger *zap.Logger) *IndexBuilder {
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexBuilder{embedder: embedder, chunkCfg: cfg, logger: logger}
}

// LoadDocuments reads every .txt and .md file under dir in path order. The
// source label is the path relative to dir.
func LoadDocuments(dir string) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := documentExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		docs = append(docs, Document{Source: filepath.ToSlash(rel), Text: string(data)})
	}
	return docs, nil
}

// Chunk cuts documents into position-ordered chunks with stable ids.
func (b *IndexBuilder) Chunk(docs []Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for i, text := range chunkText(doc.Text, b.chunkCfg) {
			chunks = append(chunks, domain.Chunk{
				ID:       chunkID(doc.Source, i),
				Position: len(chunks),
				Source:   doc.Source,
				Text:     text,
			})
		}
	}
	return chunks
}

func chunkID(source string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s#%d", source, index))).String()
}

// Build chunks and embeds docs, then hands the corpus to each writer.
func (b *IndexBuilder) Build(ctx context.Context, docs []Document, writers ...CorpusWriter) ([]domain.Chunk, error) {
	chunks := b.Chunk(docs)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no document text to index: %w", domain.ErrMissingRequiredField)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	b.logger.Info("embedding chunks", zap.Int("documents", len(docs)), zap.Int("chunks", len(chunks)))
	vectors, err := b.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrIndexMismatch.Message,
			fmt.Errorf("%d vectors for %d chunks", len(vectors), len(chunks)))
	}

	for _, w := range writers {
		if err := w.ReplaceAll(ctx, chunks, vectors); err != nil {
			return nil, fmt.Errorf("failed to write corpus: %w", err)
		}
	}
	return chunks, nil
}
