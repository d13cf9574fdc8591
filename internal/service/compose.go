package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/telemetry"
	"go.uber.org/zap"
)

// FallbackAnswer is the one sentence returned whenever no supported answer
// exists. The prompt instructions quote it and the composer substitutes it
// for failed or empty model output.
const FallbackAnswer = "I'm sorry, I don't have that information right now. Please contact the temple office for details."

// DefaultMaxContextChars bounds the CONTEXT section of the prompt.
const DefaultMaxContextChars = 6000

// DefaultSystemPrompt is used when no system prompt document is configured.
const DefaultSystemPrompt = "You are the information assistant of a Hindu temple. " +
	"You answer devotees' questions politely and briefly, using only the facts you are given."

// Generator is the generative model call.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// StatusSource reports the temple's open or closed state at a time.
type StatusSource interface {
	Status(now time.Time) (string, error)
}

// ComposerConfig holds the static prompt inputs.
type ComposerConfig struct {
	TempleName      string
	SystemPrompt    string
	StatusNote      string
	MaxContextChars int
}

// Composer builds the RAG prompt and post-processes the model answer.
type Composer struct {
	generator Generator
	status    StatusSource
	cfg       ComposerConfig
	logger    *zap.Logger
}

func NewComposer(generator Generator, status StatusSource, cfg ComposerConfig, logger *zap.Logger) *Composer {
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = DefaultMaxContextChars
	}
	if cfg.TempleName == "" {
		cfg.TempleName = "The temple"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{generator: generator, status: status, cfg: cfg, logger: logger}
}

// Compose asks the model to answer question from chunks. It always returns
// non-empty text, falling back to FallbackAnswer.
func (c *Composer) Compose(ctx context.Context, question string, chunks []domain.ScoredChunk, now time.Time) string {
	ctx, span := telemetry.StartSpan(ctx, "composer.compose", telemetry.SpanAttributes{Operation: "compose"})
	defer span.End()

	if c.generator == nil {
		return FallbackAnswer
	}

	prompt := c.BuildPrompt(question, chunks, now)
	raw, err := c.generator.Generate(ctx, c.cfg.SystemPrompt, prompt)
	if err != nil {
		c.logger.Warn("generation failed, using fallback answer", zap.Error(err))
		span.SetError(err)
		return FallbackAnswer
	}

	answer := postProcess(raw)
	if answer == "" {
		c.logger.Warn("generation returned no usable text, using fallback answer")
		return FallbackAnswer
	}
	return answer
}

// BuildPrompt renders the four prompt sections in order: temple status,
// context, question, instructions.
func (c *Composer) BuildPrompt(question string, chunks []domain.ScoredChunk, now time.Time) string {
	var b strings.Builder

	b.WriteString("TEMPLE STATUS:\n")
	b.WriteString(c.statusLine(now))
	if note := strings.TrimSpace(c.cfg.StatusNote); note != "" {
		b.WriteString("\n")
		b.WriteString(note)
	}

	b.WriteString("\n\nCONTEXT:\n")
	block := contextBlock(chunks, c.cfg.MaxContextChars)
	if block == "" {
		block = "(no documents matched)"
	}
	b.WriteString(block)

	b.WriteString("\n\nQUESTION:\n")
	b.WriteString(strings.TrimSpace(question))

	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString(instructions)
	return b.String()
}

var instructions = strings.Join([]string{
	"- Answer only from TEMPLE STATUS and CONTEXT.",
	"- Never invent times, dates, prices, phone numbers or email addresses.",
	"- Keep the answer short and friendly, in plain text.",
	fmt.Sprintf("- If the answer is not supported by the context, reply exactly: %q", FallbackAnswer),
}, "\n")

func (c *Composer) statusLine(now time.Time) string {
	if c.status == nil {
		return "Status unknown."
	}
	status, err := c.status.Status(now)
	if err != nil {
		c.logger.Debug("temple status unavailable", zap.Error(err))
		return "Status unknown."
	}
	return fmt.Sprintf("%s is %s. Current time: %s.", c.cfg.TempleName, status, now.Format("Monday, January 2, 3:04 PM"))
}

// contextBlock tags each chunk with its source and stops before the block
// would exceed limit. A single oversized first chunk is cut to fit.
func contextBlock(chunks []domain.ScoredChunk, limit int) string {
	var b strings.Builder
	for _, c := range chunks {
		entry := fmt.Sprintf("[Source: %s]\n%s", sourceLabel(c.Source), strings.TrimSpace(c.Text))
		sep := ""
		if b.Len() > 0 {
			sep = "\n\n"
		}
		if b.Len()+len(sep)+len(entry) > limit {
			if b.Len() == 0 {
				b.WriteString(truncateRunes(entry, limit))
			}
			break
		}
		b.WriteString(sep)
		b.WriteString(entry)
	}
	return b.String()
}

func sourceLabel(source string) string {
	if strings.TrimSpace(source) == "" {
		return "unknown"
	}
	return source
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if next > limit {
			break
		}
		cut = next
	}
	return s[:cut]
}

var (
	answerLabel = regexp.MustCompile(`(?i)^\s*(answer|response)\s*:\s*`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
)

// postProcess strips answer labels and wrapping quotes and collapses runs of
// blank lines.
func postProcess(raw string) string {
	text := strings.TrimSpace(raw)
	text = answerLabel.ReplaceAllString(text, "")
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
