package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/intent"
	"github.com/cloo-solutions/templeqa/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRetriever mocks the hybrid retriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, raw, expanded string, k int) []domain.ScoredChunk {
	args := m.Called(ctx, raw, expanded, k)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.ScoredChunk)
}

// MockComposer mocks the answer composer
type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Compose(ctx context.Context, question string, chunks []domain.ScoredChunk, now time.Time) string {
	args := m.Called(ctx, question, chunks, now)
	return args.String(0)
}

type panicComposer struct{}

func (panicComposer) Compose(context.Context, string, []domain.ScoredChunk, time.Time) string {
	panic("composer exploded")
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func defaultChain(t *testing.T) *intent.Chain {
	t.Helper()
	k, err := knowledge.Load(filepath.Join("..", "..", "data", "knowledge.yaml"))
	require.NoError(t, err)
	return intent.NewDefaultChain(k, nil)
}

func TestDispatcher_HandledByChain(t *testing.T) {
	loc := newYork(t)
	retriever := new(MockRetriever)
	composer := new(MockComposer)
	d := NewDispatcher(defaultChain(t), nil, retriever, composer, DispatcherConfig{Location: loc}, nil)

	friday := time.Date(2026, time.October, 16, 10, 0, 0, 0, loc)
	answer := d.Answer(context.Background(), domain.NewQuery("Temple TIMINGS", friday, "asker-1"))

	assert.Equal(t, domain.DispatchStateHandled, answer.State)
	assert.Equal(t, intent.NameHours, answer.Handler)
	assert.Contains(t, answer.Text, "OPEN until 12:00 PM")
	retriever.AssertNotCalled(t, "Retrieve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	composer.AssertNotCalled(t, "Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_ConvertsReferenceTimeToLocation(t *testing.T) {
	d := NewDispatcher(defaultChain(t), nil, nil, nil, DispatcherConfig{Location: newYork(t)}, nil)

	// 17:00 UTC is 13:00 in New York, between the weekday sessions
	ref := time.Date(2026, time.October, 16, 17, 0, 0, 0, time.UTC)
	answer := d.Answer(context.Background(), domain.NewQuery("is the temple open now", ref, ""))

	assert.Contains(t, answer.Text, "CLOSED, opens at 6:00 PM")
}

func TestDispatcher_ZeroReferenceTimeUsesClock(t *testing.T) {
	loc := newYork(t)
	clock := func() time.Time { return time.Date(2026, time.October, 16, 10, 0, 0, 0, loc) }
	d := NewDispatcher(defaultChain(t), nil, nil, nil, DispatcherConfig{Location: loc, Clock: clock}, nil)

	answer := d.Answer(context.Background(), domain.NewQuery("is the temple open now", time.Time{}, ""))

	assert.Contains(t, answer.Text, "OPEN until 12:00 PM")
}

func TestDispatcher_RAGFallback(t *testing.T) {
	loc := newYork(t)
	retriever := new(MockRetriever)
	composer := new(MockComposer)
	d := NewDispatcher(defaultChain(t), nil, retriever, composer, DispatcherConfig{Location: loc, RetrievalK: 4}, nil)

	ref := time.Date(2026, time.October, 16, 10, 0, 0, 0, loc)
	chunks := []domain.ScoredChunk{scored("history.txt", "The gopuram was designed by Sthapati Ganapati.")}

	retriever.On("Retrieve", mock.Anything, "Who designed the gopuram?", "who designed the gopuram?", 4).Return(chunks)
	composer.On("Compose", mock.Anything, "Who designed the gopuram?", chunks, ref).Return("Sthapati Ganapati designed it.")

	answer := d.Answer(context.Background(), domain.NewQuery("Who designed the gopuram?", ref, "asker-2"))

	assert.Equal(t, domain.DispatchStateAnswered, answer.State)
	assert.Empty(t, answer.Handler)
	assert.Equal(t, "Sthapati Ganapati designed it.", answer.Text)
	retriever.AssertExpectations(t)
	composer.AssertExpectations(t)
}

func TestDispatcher_RAGExpandsQuery(t *testing.T) {
	loc := newYork(t)
	retriever := new(MockRetriever)
	composer := new(MockComposer)
	d := NewDispatcher(defaultChain(t), nil, retriever, composer, DispatcherConfig{Location: loc}, nil)

	ref := time.Date(2026, time.October, 16, 10, 0, 0, 0, loc)
	retriever.On("Retrieve", mock.Anything, mock.Anything, mock.MatchedBy(func(expanded string) bool {
		return len(expanded) > len("who paints the balaji murals") &&
			expanded[:len("who paints the balaji murals")] == "who paints the balaji murals"
	}), DefaultRetrievalK).Return(nil)
	composer.On("Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("A volunteer artist.")

	answer := d.Answer(context.Background(), domain.NewQuery("Who paints the Balaji murals", ref, ""))

	assert.Equal(t, "A volunteer artist.", answer.Text)
	retriever.AssertExpectations(t)
}

func TestDispatcher_FallbackGuarantee(t *testing.T) {
	loc := newYork(t)
	embedder := new(MockEmbeddingClient)
	searcher := new(MockVectorSearcher)
	gen := new(MockGenerator)

	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(nil, errors.New("embedding service down"))
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("model timeout"))

	retriever := NewHybridRetriever(embedder, NewVectorRetriever(searcher, nil), NewKeywordRetriever(nil), 0, nil)
	composer := NewComposer(gen, intent.NewSchedule(nil), ComposerConfig{}, nil)
	d := NewDispatcher(defaultChain(t), nil, retriever, composer, DispatcherConfig{Location: loc}, nil)

	ref := time.Date(2026, time.October, 16, 10, 0, 0, 0, loc)
	answer := d.Answer(context.Background(), domain.NewQuery("what is the airspeed velocity of an unladen swallow", ref, ""))

	assert.Equal(t, FallbackAnswer, answer.Text)
	assert.Equal(t, domain.DispatchStateAnswered, answer.State)
	gen.AssertExpectations(t)
}

func TestDispatcher_NeverEmpty(t *testing.T) {
	loc := newYork(t)
	ref := time.Date(2026, time.October, 16, 10, 0, 0, 0, loc)

	t.Run("empty query", func(t *testing.T) {
		d := NewDispatcher(defaultChain(t), nil, nil, nil, DispatcherConfig{Location: loc}, nil)
		answer := d.Answer(context.Background(), domain.NewQuery("   ", ref, ""))
		assert.Equal(t, FallbackAnswer, answer.Text)
	})

	t.Run("composer returns nothing", func(t *testing.T) {
		composer := new(MockComposer)
		composer.On("Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("")
		d := NewDispatcher(defaultChain(t), nil, nil, composer, DispatcherConfig{Location: loc}, nil)
		answer := d.Answer(context.Background(), domain.NewQuery("who carved the doors", ref, ""))
		assert.Equal(t, FallbackAnswer, answer.Text)
	})

	t.Run("composer panics", func(t *testing.T) {
		d := NewDispatcher(defaultChain(t), nil, nil, panicComposer{}, DispatcherConfig{Location: loc}, nil)
		answer := d.Answer(context.Background(), domain.NewQuery("who carved the doors", ref, ""))
		assert.Equal(t, FallbackAnswer, answer.Text)
		assert.Equal(t, domain.DispatchStateAnswered, answer.State)
	})

	t.Run("no collaborators", func(t *testing.T) {
		d := NewDispatcher(nil, nil, nil, nil, DispatcherConfig{}, nil)
		assert.Equal(t, FallbackAnswer, d.AnswerText(context.Background(), "anything at all", ref, ""))
	})
}

func TestDispatcher_AnswerText(t *testing.T) {
	loc := newYork(t)
	d := NewDispatcher(defaultChain(t), nil, nil, nil, DispatcherConfig{Location: loc}, nil)

	text := d.AnswerText(context.Background(), "hi", time.Date(2026, time.October, 16, 10, 0, 0, 0, loc), "asker-3")

	assert.Contains(t, text, "Namaste")
}
