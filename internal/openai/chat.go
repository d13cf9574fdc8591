package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the model used to compose answers
	DefaultChatModel = openai.GPT4oMini
	// DefaultChatTimeout bounds a single completion request
	DefaultChatTimeout = 30 * time.Second
	// DefaultMaxTokens caps the length of a composed answer
	DefaultMaxTokens = 400
)

// ErrEmptyCompletion is returned when the model responds without text.
var ErrEmptyCompletion = errors.New("completion returned no text")

// ChatAPI defines the interface for chat completion
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatConfig configures the chat client.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// ChatClient generates answers from a system and a user prompt.
type ChatClient struct {
	api         ChatAPI
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewChatClient creates a ChatClient against the OpenAI API.
func NewChatClient(cfg ChatConfig) *ChatClient {
	return NewChatClientWithAPI(newAPIClient(cfg.APIKey, cfg.BaseURL), cfg)
}

// NewChatClientWithAPI creates a ChatClient over an arbitrary ChatAPI.
func NewChatClientWithAPI(api ChatAPI, cfg ChatConfig) *ChatClient {
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultChatTimeout
	}
	return &ChatClient{
		api:         api,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

// Generate sends the prompts and returns the trimmed completion text.
func (c *ChatClient) Generate(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
