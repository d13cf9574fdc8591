package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbeddingAPI is a mock for the OpenAI embeddings API
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func vector(dims int, seed float32) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = seed + float32(i)*0.001
	}
	return v
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithAPI(mockAPI, Config{})

	ctx := context.Background()
	text := "When is the next full moon pooja?"
	expected := vector(DefaultEmbeddingDimensions, 0)

	mockAPI.On("CreateEmbeddings", mock.Anything, []string{text}).Return([][]float32{expected}, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, embedding, DefaultEmbeddingDimensions)
	assert.Equal(t, expected, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClient("")

	embedding, err := client.GenerateEmbedding(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithAPI(mockAPI, Config{})

	apiErr := errors.New("API rate limit exceeded")
	mockAPI.On("CreateEmbeddings", mock.Anything, []string{"Test text"}).Return(nil, apiErr)

	embedding, err := client.GenerateEmbedding(context.Background(), "Test text")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithAPI(mockAPI, Config{EmbeddingDimensions: 8})

	mockAPI.On("CreateEmbeddings", mock.Anything, []string{"Test text"}).Return([][]float32{vector(4, 0)}, nil)

	embedding, err := client.GenerateEmbedding(context.Background(), "Test text")

	assert.Nil(t, embedding)
	assert.ErrorIs(t, err, ErrWrongDimensions)
	assert.Contains(t, err.Error(), "expected 8")
}

func TestClient_GenerateEmbeddings_Batches(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithAPI(mockAPI, Config{EmbeddingDimensions: 2})

	texts := make([]string, MaxBatchSize+3)
	vectors := make([][]float32, len(texts))
	for i := range texts {
		texts[i] = "chunk"
		vectors[i] = []float32{float32(i), 1}
	}

	mockAPI.On("CreateEmbeddings", mock.Anything, texts[:MaxBatchSize]).Return(vectors[:MaxBatchSize], nil).Once()
	mockAPI.On("CreateEmbeddings", mock.Anything, texts[MaxBatchSize:]).Return(vectors[MaxBatchSize:], nil).Once()

	got, err := client.GenerateEmbeddings(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, got, len(texts))
	assert.Equal(t, float32(MaxBatchSize+2), got[MaxBatchSize+2][0])
	mockAPI.AssertNumberOfCalls(t, "CreateEmbeddings", 2)
}

func TestClient_GenerateEmbeddings_CountMismatch(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithAPI(mockAPI, Config{EmbeddingDimensions: 2})

	mockAPI.On("CreateEmbeddings", mock.Anything, []string{"a", "b"}).Return([][]float32{{1, 2}}, nil)

	_, err := client.GenerateEmbeddings(context.Background(), []string{"a", "b"})

	assert.ErrorIs(t, err, ErrBatchMismatch)
}

func TestClient_GenerateEmbeddings_RejectsEmptyInput(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithAPI(mockAPI, Config{})

	_, err := client.GenerateEmbeddings(context.Background(), []string{"a", ""})

	assert.Equal(t, ErrEmptyText, err)
	mockAPI.AssertNotCalled(t, "CreateEmbeddings", mock.Anything, mock.Anything)
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key")

	assert.NotNil(t, client)
	assert.NotNil(t, client.api)
	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())
	assert.Equal(t, DefaultEmbeddingTimeout, client.timeout)
}

func TestNewClientFromEnv_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client, err := NewClientFromEnv()

	assert.Nil(t, client)
	assert.Error(t, err)
	assert.Equal(t, ErrNoAPIKey, err)
}

func TestNewClientFromEnv_WithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-api-key")

	client, err := NewClientFromEnv()

	assert.NotNil(t, client)
	assert.NoError(t, err)
}
