package index

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/cloo-solutions/templeqa/internal/domain"
)

// FileIndex is an in-memory corpus loaded from the vector and metadata
// artifacts. It is read-only after construction and safe for concurrent use.
type FileIndex struct {
	vectors [][]float32
	norms   []float64
	chunks  []domain.Chunk
	dims    int
}

// New builds a FileIndex, refusing vectors and chunks that are out of step.
func New(vectors [][]float32, chunks []domain.Chunk) (*FileIndex, error) {
	if len(vectors) != len(chunks) {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrIndexMismatch.Message,
			fmt.Errorf("%d vectors, %d chunks", len(vectors), len(chunks)))
	}
	if err := domain.ValidateChunks(chunks); err != nil {
		return nil, err
	}

	idx := &FileIndex{vectors: vectors, chunks: chunks, norms: make([]float64, len(vectors))}
	for i, v := range vectors {
		if i == 0 {
			idx.dims = len(v)
		}
		if len(v) != idx.dims {
			return nil, fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(v), idx.dims)
		}
		idx.norms[i] = norm(v)
	}
	return idx, nil
}

// Read loads an index from the two artifact streams.
func Read(vectors, metadata io.Reader) (*FileIndex, error) {
	vecs, err := ReadVectors(vectors)
	if err != nil {
		return nil, err
	}
	chunks, err := ReadMetadata(metadata)
	if err != nil {
		return nil, err
	}
	return New(vecs, chunks)
}

// Open loads an index from artifact files on disk.
func Open(vectorPath, metadataPath string) (*FileIndex, error) {
	vf, err := os.Open(vectorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector file: %w", err)
	}
	defer vf.Close()

	mf, err := os.Open(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer mf.Close()

	return Read(vf, mf)
}

// Save writes both artifacts to disk.
func Save(vectorPath, metadataPath string, vectors [][]float32, chunks []domain.Chunk) error {
	if _, err := New(vectors, chunks); err != nil {
		return err
	}
	if err := writeFile(vectorPath, func(w io.Writer) error { return WriteVectors(w, vectors) }); err != nil {
		return err
	}
	return writeFile(metadataPath, func(w io.Writer) error { return WriteMetadata(w, chunks) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Len returns the number of indexed chunks.
func (i *FileIndex) Len() int { return len(i.chunks) }

// Dimensions returns the vector length, 0 for an empty index.
func (i *FileIndex) Dimensions() int { return i.dims }

// Chunks returns the chunk metadata in index order.
func (i *FileIndex) Chunks() []domain.Chunk { return i.chunks }

// Search returns the k positions most similar to vector by cosine
// similarity. Ties keep index order.
func (i *FileIndex) Search(ctx context.Context, vector []float32, k int) ([]domain.Hit, error) {
	if k <= 0 || len(i.vectors) == 0 {
		return nil, nil
	}
	if len(vector) != i.dims {
		return nil, fmt.Errorf("query vector has %d dimensions, index has %d", len(vector), i.dims)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qn := norm(vector)
	hits := make([]domain.Hit, len(i.vectors))
	for p, v := range i.vectors {
		hits[p] = domain.Hit{Position: p, Score: cosine(v, i.norms[p], vector, qn)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, an float64, b []float32, bn float64) float32 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (an * bn))
}

// FileWriter saves a corpus as the vector and metadata artifacts.
type FileWriter struct {
	VectorPath   string
	MetadataPath string
}

// ReplaceAll overwrites both artifact files.
func (w FileWriter) ReplaceAll(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	return Save(w.VectorPath, w.MetadataPath, vectors, chunks)
}
