package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
	"github.com/cloo-solutions/templeqa/internal/telemetry"
	"go.uber.org/zap"
)

const (
	// DefaultRetrievalK is the number of chunks handed to the composer.
	DefaultRetrievalK = 5
	// DefaultMinVectorResults is the vector result count below which the
	// keyword fallback runs.
	DefaultMinVectorResults = 3
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher is the nearest-neighbour read interface of the corpus
// index. Both the file index and the Postgres repository implement it.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]domain.Hit, error)
}

// VectorRetriever maps index hits back to chunk metadata.
type VectorRetriever struct {
	searcher VectorSearcher
	chunks   []domain.Chunk
}

func NewVectorRetriever(searcher VectorSearcher, chunks []domain.Chunk) *VectorRetriever {
	return &VectorRetriever{searcher: searcher, chunks: chunks}
}

// Retrieve returns up to k chunks nearest to vector. Hits whose position is
// outside the metadata range are dropped.
func (r *VectorRetriever) Retrieve(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 || r.searcher == nil {
		return nil, nil
	}
	hits, err := r.searcher.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	out := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(r.chunks) {
			continue
		}
		out = append(out, domain.ScoredChunk{Chunk: r.chunks[hit.Position], Score: hit.Score})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// KeywordRetriever is the exact substring matcher over the corpus.
type KeywordRetriever struct {
	chunks []domain.Chunk
	lower  []string
}

func NewKeywordRetriever(chunks []domain.Chunk) *KeywordRetriever {
	lower := make([]string, len(chunks))
	for i, c := range chunks {
		lower[i] = strings.ToLower(c.Text)
	}
	return &KeywordRetriever{chunks: chunks, lower: lower}
}

// Retrieve returns, in index order, up to k chunks containing every
// significant word of raw, each as typed or in its canonical spelling. A
// query with no significant words matches nothing.
func (r *KeywordRetriever) Retrieve(raw string, k int) []domain.ScoredChunk {
	keywords := query.SignificantWords(query.Fold(raw))
	if len(keywords) == 0 || k <= 0 {
		return nil
	}

	var out []domain.ScoredChunk
	for i, text := range r.lower {
		if containsAll(text, keywords) {
			out = append(out, domain.ScoredChunk{Chunk: r.chunks[i]})
			if len(out) == k {
				break
			}
		}
	}
	return out
}

func containsAll(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			continue
		}
		if canonical := query.Canonical(kw); canonical == kw || !strings.Contains(text, canonical) {
			return false
		}
	}
	return true
}

// HybridRetriever runs vector retrieval and tops it up with keyword matches
// when it under-returns.
type HybridRetriever struct {
	embedder         EmbeddingClient
	vector           *VectorRetriever
	keyword          *KeywordRetriever
	minVectorResults int
	logger           *zap.Logger
}

func NewHybridRetriever(embedder EmbeddingClient, vector *VectorRetriever, keyword *KeywordRetriever, minVectorResults int, logger *zap.Logger) *HybridRetriever {
	if minVectorResults <= 0 {
		minVectorResults = DefaultMinVectorResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridRetriever{
		embedder:         embedder,
		vector:           vector,
		keyword:          keyword,
		minVectorResults: minVectorResults,
		logger:           logger,
	}
}

// Retrieve embeds expanded, searches the index and, below the threshold,
// appends keyword matches for raw. Embedding and search failures degrade to
// an empty vector result.
func (h *HybridRetriever) Retrieve(ctx context.Context, raw, expanded string, k int) []domain.ScoredChunk {
	if k <= 0 {
		k = DefaultRetrievalK
	}
	ctx, span := telemetry.StartSpan(ctx, "retrieval.hybrid", telemetry.SpanAttributes{Operation: "retrieve"})
	defer span.End()

	vectorResults := h.vectorResults(ctx, expanded, k)
	if len(vectorResults) >= h.minVectorResults || h.keyword == nil {
		return merge(vectorResults, nil, k)
	}

	keywordResults := h.keyword.Retrieve(raw, k)
	h.logger.Debug("keyword fallback",
		zap.Int("vector_results", len(vectorResults)),
		zap.Int("keyword_results", len(keywordResults)))
	return merge(vectorResults, keywordResults, k)
}

func (h *HybridRetriever) vectorResults(ctx context.Context, text string, k int) []domain.ScoredChunk {
	if h.embedder == nil || h.vector == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	vec, err := h.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		h.logger.Warn("embedding failed, continuing without vector results", zap.Error(err))
		telemetry.Degraded(ctx, "embedding", err)
		return nil
	}

	results, err := h.vector.Retrieve(ctx, vec, k)
	if err != nil {
		h.logger.Warn("vector retrieval failed, continuing without vector results", zap.Error(err))
		telemetry.Degraded(ctx, "vector_search", err)
		return nil
	}
	return results
}

// merge keeps vector results first, appends keyword results whose text is
// new, and truncates to k.
func merge(vectorResults, keywordResults []domain.ScoredChunk, k int) []domain.ScoredChunk {
	seen := make(map[string]struct{}, len(vectorResults)+len(keywordResults))
	out := make([]domain.ScoredChunk, 0, k)
	for _, list := range [][]domain.ScoredChunk{vectorResults, keywordResults} {
		for _, c := range list {
			if len(out) == k {
				return out
			}
			if _, dup := seen[c.Text]; dup {
				continue
			}
			seen[c.Text] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
