package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cloo-solutions/templeqa/internal/domain"
)

// WriteMetadata writes one JSON chunk record per line.
func WriteMetadata(w io.Writer, chunks []domain.Chunk) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to write chunk %q: %w", c.ID, err)
		}
	}
	return bw.Flush()
}

// ReadMetadata reads a file written by WriteMetadata.
func ReadMetadata(r io.Reader) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	dec := json.NewDecoder(r)
	for {
		var c domain.Chunk
		err := dec.Decode(&c)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk %d: %w", len(chunks), err)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}
