package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
	"github.com/cloo-solutions/templeqa/internal/telemetry"
	"go.uber.org/zap"
)

// Resolver is the intent handler chain as seen by the dispatcher.
type Resolver interface {
	Resolve(query string, now time.Time) (handler, text string, ok bool)
}

// Retriever supplies RAG context for a query.
type Retriever interface {
	Retrieve(ctx context.Context, raw, expanded string, k int) []domain.ScoredChunk
}

// AnswerComposer turns a question and its context into answer text.
type AnswerComposer interface {
	Compose(ctx context.Context, question string, chunks []domain.ScoredChunk, now time.Time) string
}

// DispatcherConfig holds dispatcher settings.
type DispatcherConfig struct {
	Location   *time.Location
	RetrievalK int
	Clock      func() time.Time
}

// Dispatcher runs the handler chain and falls back to retrieval plus
// generation. It holds no per-query state and is safe for concurrent use.
type Dispatcher struct {
	chain     Resolver
	expander  *query.Expander
	retriever Retriever
	composer  AnswerComposer
	loc       *time.Location
	k         int
	clock     func() time.Time
	logger    *zap.Logger
}

func NewDispatcher(chain Resolver, expander *query.Expander, retriever Retriever, composer AnswerComposer, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if expander == nil {
		expander = query.NewExpander(query.DefaultMaxAliasTerms)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = DefaultRetrievalK
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		chain:     chain,
		expander:  expander,
		retriever: retriever,
		composer:  composer,
		loc:       cfg.Location,
		k:         cfg.RetrievalK,
		clock:     cfg.Clock,
		logger:    logger,
	}
}

// AnswerText answers text at now for askerID and returns only the text.
func (d *Dispatcher) AnswerText(ctx context.Context, text string, now time.Time, askerID string) string {
	return d.Answer(ctx, domain.NewQuery(text, now, askerID)).Text
}

// Answer resolves q to a non-empty answer. Failures along the RAG path end
// in FallbackAnswer and are never returned as errors.
func (d *Dispatcher) Answer(ctx context.Context, q domain.Query) (answer domain.Answer) {
	ctx, span := telemetry.StartSpan(ctx, "dispatcher.answer", telemetry.SpanAttributes{
		AskerID:   q.AskerID,
		Operation: "answer",
	})
	defer span.End()

	answer = domain.Answer{State: domain.DispatchStateStart}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("dispatcher panic: %v", r)
			d.logger.Error("dispatch aborted", zap.Error(err))
			span.SetError(err)
			answer = domain.Answer{Text: FallbackAnswer, State: domain.DispatchStateAnswered}
		}
		if answer.Text == "" {
			answer.Text = FallbackAnswer
			answer.State = domain.DispatchStateAnswered
		}
	}()

	now := q.ReferenceTime
	if now.IsZero() {
		now = d.clock()
	}
	now = now.In(d.loc)

	normalized := query.Normalize(q.Text)
	if normalized == "" {
		return domain.Answer{Text: FallbackAnswer, State: domain.DispatchStateAnswered}
	}

	if d.chain != nil {
		if name, text, ok := d.chain.Resolve(normalized, now); ok {
			span.SetTag("handler", name)
			d.logger.Debug("query handled", zap.String("handler", name), zap.String("asker_id", q.AskerID))
			return domain.Answer{Text: text, Handler: name, State: domain.DispatchStateHandled}
		}
	}

	answer.State = domain.DispatchStateRAGFallback
	expanded := d.expander.Expand(normalized, now)

	var chunks []domain.ScoredChunk
	if d.retriever != nil {
		chunks = d.retriever.Retrieve(ctx, q.Text, expanded, d.k)
	}
	d.logger.Debug("rag fallback",
		zap.String("asker_id", q.AskerID),
		zap.String("expanded", expanded),
		zap.Int("chunks", len(chunks)))

	text := FallbackAnswer
	if d.composer != nil {
		text = d.composer.Compose(ctx, q.Text, chunks, now)
	}
	return domain.Answer{Text: text, State: domain.DispatchStateAnswered}
}
