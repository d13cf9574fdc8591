package index

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/templeqa/internal/domain"
)

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c0", Position: 0, Source: "history.txt", Text: "The temple was consecrated in 1998."},
		{ID: "c1", Position: 1, Source: "history.txt", Text: "The gopuram was completed in 2004."},
		{ID: "c2", Position: 2, Source: "volunteer.txt", Text: "Volunteers register at the office."},
	}
}

func sampleVectors() [][]float32 {
	return [][]float32{
		{1, 0, 0},
		{0.8, 0.6, 0},
		{0, 0, 1},
	}
}

func TestVectors_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVectors(&buf, sampleVectors()))

	got, err := ReadVectors(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleVectors(), got)
}

func TestVectors_RejectsRaggedInput(t *testing.T) {
	var buf bytes.Buffer
	err := WriteVectors(&buf, [][]float32{{1, 2}, {1}})
	assert.Error(t, err)
}

func TestReadVectors_Invalid(t *testing.T) {
	_, err := ReadVectors(bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, ErrBadVectorFile)

	var buf bytes.Buffer
	require.NoError(t, WriteVectors(&buf, sampleVectors()))
	truncated := buf.Bytes()[:buf.Len()-4]
	_, err = ReadVectors(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, ErrBadVectorFile)
}

func TestNew_CountMismatch(t *testing.T) {
	_, err := New(sampleVectors()[:2], sampleChunks())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexMismatch)
}

func TestNew_OrderMismatch(t *testing.T) {
	chunks := sampleChunks()
	chunks[1].Position = 2
	_, err := New(sampleVectors(), chunks)
	assert.ErrorIs(t, err, domain.ErrIndexMismatch)
}

func TestFileIndex_Search(t *testing.T) {
	idx, err := New(sampleVectors(), sampleChunks())
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Position)
	assert.Equal(t, 1, hits[1].Position)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	hits, err = idx.Search(context.Background(), []float32{0, 0, 2}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	assert.Equal(t, 2, hits[0].Position)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestFileIndex_SearchDimensionMismatch(t *testing.T) {
	idx, err := New(sampleVectors(), sampleChunks())
	require.NoError(t, err)

	_, err = idx.Search(context.Background(), []float32{1, 0}, 2)
	assert.Error(t, err)
}

func TestFileIndex_SearchCancelled(t *testing.T) {
	idx, err := New(sampleVectors(), sampleChunks())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.Search(ctx, []float32{1, 0, 0}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveOpen(t *testing.T) {
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "corpus.vec")
	metaPath := filepath.Join(dir, "corpus.jsonl")

	require.NoError(t, Save(vecPath, metaPath, sampleVectors(), sampleChunks()))

	idx, err := Open(vecPath, metaPath)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 3, idx.Dimensions())
	assert.Equal(t, sampleChunks(), idx.Chunks())
}

func TestSave_RefusesMismatch(t *testing.T) {
	dir := t.TempDir()
	err := Save(filepath.Join(dir, "v"), filepath.Join(dir, "m"), sampleVectors(), sampleChunks()[:1])
	assert.ErrorIs(t, err, domain.ErrIndexMismatch)
}

func TestRead_EmptyIndex(t *testing.T) {
	var vec, meta bytes.Buffer
	require.NoError(t, WriteVectors(&vec, nil))
	require.NoError(t, WriteMetadata(&meta, nil))

	idx, err := Read(&vec, &meta)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())

	hits, err := idx.Search(context.Background(), []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFileWriter_ReplaceAll(t *testing.T) {
	dir := t.TempDir()
	w := FileWriter{
		VectorPath:   filepath.Join(dir, "corpus.vec"),
		MetadataPath: filepath.Join(dir, "corpus.jsonl"),
	}

	require.NoError(t, w.ReplaceAll(context.Background(), sampleChunks(), sampleVectors()))
	require.NoError(t, w.ReplaceAll(context.Background(), sampleChunks()[:1], sampleVectors()[:1]))

	idx, err := Open(w.VectorPath, w.MetadataPath)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}
