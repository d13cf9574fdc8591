package openai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func completion(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: text}}},
	}
}

func TestChatClient_Generate(t *testing.T) {
	api := new(MockChatAPI)
	client := NewChatClientWithAPI(api, ChatConfig{})

	api.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == DefaultChatModel &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[0].Content == "system" &&
			req.Messages[1].Role == openai.ChatMessageRoleUser &&
			req.Messages[1].Content == "user" &&
			req.MaxTokens == DefaultMaxTokens
	})).Return(completion("  The abhishekam starts at 9:30 AM.\n"), nil)

	text, err := client.Generate(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.Equal(t, "The abhishekam starts at 9:30 AM.", text)
	api.AssertExpectations(t)
}

func TestChatClient_Generate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resp    openai.ChatCompletionResponse
		err     error
		wantErr error
	}{
		{"api error", openai.ChatCompletionResponse{}, errors.New("503"), nil},
		{"no choices", openai.ChatCompletionResponse{}, nil, ErrEmptyCompletion},
		{"blank text", completion("   "), nil, ErrEmptyCompletion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockChatAPI)
			client := NewChatClientWithAPI(api, ChatConfig{Model: "test-model"})
			api.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			text, err := client.Generate(context.Background(), "s", "u")

			assert.Empty(t, text)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
