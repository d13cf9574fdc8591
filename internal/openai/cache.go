package openai

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of query embeddings kept in memory.
const DefaultCacheSize = 1024

// Embedder produces embeddings for single texts and batches.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// CachedEmbedder memoizes single-text embeddings, which repeat often for
// button-driven and common questions. Batches bypass the cache.
type CachedEmbedder struct {
	next  Embedder
	cache *lru.Cache
}

// NewCachedEmbedder wraps next with an LRU cache of size entries.
func NewCachedEmbedder(next Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{next: next, cache: cache}, nil
}

func (c *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}
	embedding, err := c.next.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, embedding)
	return embedding, nil
}

func (c *CachedEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return c.next.GenerateEmbeddings(ctx, texts)
}

// Len returns the number of cached embeddings.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}
