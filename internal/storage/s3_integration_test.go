//go:build integration

package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloo-solutions/templeqa/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Client_IndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	sc := testutil.NewS3Container(ctx, t)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        sc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     sc.AccessKey,
		SecretAccessKey: sc.SecretKey,
		Bucket:          "templeqa-index",
		Prefix:          "test",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))

	dir := t.TempDir()
	vecPath := filepath.Join(dir, VectorObject)
	metaPath := filepath.Join(dir, MetadataObject)
	require.NoError(t, os.WriteFile(vecPath, []byte("vector bytes"), 0o644))
	require.NoError(t, os.WriteFile(metaPath, []byte("{\"id\":\"a\"}\n"), 0o644))

	require.NoError(t, client.UploadIndex(ctx, vecPath, metaPath))

	meta, err := client.HeadObject(ctx, client.Key(VectorObject))
	require.NoError(t, err)
	assert.Equal(t, int64(len("vector bytes")), meta.ContentLength)

	vectors, metadata, err := client.OpenIndex(ctx)
	require.NoError(t, err)
	defer vectors.Close()
	defer metadata.Close()

	got, err := io.ReadAll(metadata)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"a\"}\n", string(got))

	require.NoError(t, client.DeleteObject(ctx, client.Key(VectorObject)))
	_, err = client.HeadObject(ctx, client.Key(VectorObject))
	assert.Error(t, err)
}
