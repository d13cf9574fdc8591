package storage

import (
	"context"
	"fmt"
	"io"
)

// Object names of the index artifacts under the configured prefix.
const (
	VectorObject   = "vectors.bin"
	MetadataObject = "chunks.jsonl"
)

// UploadIndex uploads the vector and metadata files written by the index
// builder.
func (c *S3Client) UploadIndex(ctx context.Context, vectorPath, metadataPath string) error {
	if err := c.PutFile(ctx, c.Key(VectorObject), vectorPath, "application/octet-stream"); err != nil {
		return err
	}
	return c.PutFile(ctx, c.Key(MetadataObject), metadataPath, "application/x-ndjson")
}

// OpenIndex opens both artifacts for reading. Both readers must be closed.
func (c *S3Client) OpenIndex(ctx context.Context) (io.ReadCloser, io.ReadCloser, error) {
	vectors, err := c.GetObject(ctx, c.Key(VectorObject))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open vector artifact: %w", err)
	}
	metadata, err := c.GetObject(ctx, c.Key(MetadataObject))
	if err != nil {
		vectors.Close()
		return nil, nil, fmt.Errorf("failed to open metadata artifact: %w", err)
	}
	return vectors, metadata, nil
}
