package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockGenerator mocks the chat model
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

type fixedStatus struct {
	status string
	err    error
}

func (f fixedStatus) Status(time.Time) (string, error) { return f.status, f.err }

var composeNow = time.Date(2024, time.October, 11, 10, 0, 0, 0, time.UTC)

func scored(source, text string) domain.ScoredChunk {
	return domain.ScoredChunk{Chunk: domain.Chunk{Source: source, Text: text}}
}

func TestComposer_BuildPrompt_SectionOrder(t *testing.T) {
	c := NewComposer(nil, fixedStatus{status: "OPEN until 12:00 PM"}, ComposerConfig{
		TempleName: "Sri Venkateswara Temple",
		StatusNote: "The temple is open on all federal holidays.",
	}, nil)

	prompt := c.BuildPrompt("  Who designed the gopuram? ", []domain.ScoredChunk{
		scored("history.txt", "The gopuram was designed by Sthapati Ganapati."),
		scored("", "Untagged text."),
	}, composeNow)

	sections := []string{"TEMPLE STATUS:", "CONTEXT:", "QUESTION:", "INSTRUCTIONS:"}
	last := -1
	for _, s := range sections {
		idx := strings.Index(prompt, s)
		assert.Greater(t, idx, last, "section %s out of order", s)
		last = idx
	}

	assert.Contains(t, prompt, "Sri Venkateswara Temple is OPEN until 12:00 PM.")
	assert.Contains(t, prompt, "The temple is open on all federal holidays.")
	assert.Contains(t, prompt, "[Source: history.txt]\nThe gopuram was designed by Sthapati Ganapati.")
	assert.Contains(t, prompt, "[Source: unknown]\nUntagged text.")
	assert.Contains(t, prompt, "QUESTION:\nWho designed the gopuram?\n")
	assert.Contains(t, prompt, FallbackAnswer)
}

func TestComposer_BuildPrompt_ContextOrderFollowsRank(t *testing.T) {
	c := NewComposer(nil, nil, ComposerConfig{}, nil)

	prompt := c.BuildPrompt("q", []domain.ScoredChunk{scored("a", "first"), scored("b", "second")}, composeNow)

	assert.Less(t, strings.Index(prompt, "first"), strings.Index(prompt, "second"))
	assert.Contains(t, prompt, "Status unknown.")
}

func TestComposer_BuildPrompt_EmptyContext(t *testing.T) {
	c := NewComposer(nil, fixedStatus{err: errors.New("bad hours")}, ComposerConfig{}, nil)

	prompt := c.BuildPrompt("q", nil, composeNow)

	assert.Contains(t, prompt, "CONTEXT:\n(no documents matched)")
	assert.Contains(t, prompt, "Status unknown.")
}

func TestContextBlock_Bounded(t *testing.T) {
	chunks := []domain.ScoredChunk{
		scored("a", strings.Repeat("x", 40)),
		scored("b", strings.Repeat("y", 40)),
	}

	block := contextBlock(chunks, 70)
	assert.Contains(t, block, "[Source: a]")
	assert.NotContains(t, block, "[Source: b]")
	assert.LessOrEqual(t, len(block), 70)

	block = contextBlock(chunks[:1], 20)
	assert.Len(t, block, 20)
}

func TestTruncateRunes_KeepsRuneBoundaries(t *testing.T) {
	got := truncateRunes("ॐ namah", 4)
	assert.Equal(t, "ॐ ", got)
}

func TestComposer_Compose(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want string
	}{
		{name: "answer passes through", text: "The gopuram was completed in 2004.", want: "The gopuram was completed in 2004."},
		{name: "answer label stripped", text: "Answer: Volunteers register at the office.", want: "Volunteers register at the office."},
		{name: "wrapping quotes stripped", text: `"Yes, the library opens on Sundays."`, want: "Yes, the library opens on Sundays."},
		{name: "model error", err: errors.New("503 from upstream"), want: FallbackAnswer},
		{name: "empty output", text: "   ", want: FallbackAnswer},
		{name: "label only", text: "Answer:", want: FallbackAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			gen.On("Generate", mock.Anything, DefaultSystemPrompt, mock.Anything).Return(tt.text, tt.err)
			c := NewComposer(gen, nil, ComposerConfig{}, nil)

			got := c.Compose(context.Background(), "question", nil, composeNow)

			assert.Equal(t, tt.want, got)
			gen.AssertExpectations(t)
		})
	}
}

func TestComposer_CustomSystemPrompt(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "Be brief.", mock.Anything).Return("ok", nil)
	c := NewComposer(gen, nil, ComposerConfig{SystemPrompt: "Be brief."}, nil)

	assert.Equal(t, "ok", c.Compose(context.Background(), "q", nil, composeNow))
}

func TestComposer_NoGenerator(t *testing.T) {
	c := NewComposer(nil, nil, ComposerConfig{}, nil)
	assert.Equal(t, FallbackAnswer, c.Compose(context.Background(), "q", nil, composeNow))
}

func TestPostProcess_CollapsesBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", postProcess("a\n\n\n\nb"))
}
