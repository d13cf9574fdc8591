package domain

import "fmt"

// Chunk is a retrievable unit of document text. Position is its offset in
// both the vector index and the metadata list; the two must stay in step.
type Chunk struct {
	ID       string `json:"id" yaml:"id"`
	Position int    `json:"position" yaml:"position"`
	Source   string `json:"source" yaml:"source"`
	Text     string `json:"text" yaml:"text"`
}

// ScoredChunk is a chunk returned from retrieval with its rank-implied score.
type ScoredChunk struct {
	Chunk
	Score float32
}

// Hit is a raw nearest-neighbour result: an index position and a similarity.
type Hit struct {
	Position int
	Score    float32
}

// ValidateChunks checks that chunk positions run 0..n-1 in order and every
// chunk has an id and text.
func ValidateChunks(chunks []Chunk) error {
	for i, c := range chunks {
		if c.Position != i {
			return NewDomainErrorWithCause(ErrCodeInternalError, ErrIndexMismatch.Message,
				fmt.Errorf("chunk %q has position %d, expected %d", c.ID, c.Position, i))
		}
		if c.ID == "" {
			return fmt.Errorf("chunk at position %d: %w", i, ErrMissingRequiredField)
		}
		if c.Text == "" {
			return fmt.Errorf("chunk %q has empty text: %w", c.ID, ErrMissingRequiredField)
		}
	}
	return nil
}
