// Package telemetry wraps Sentry tracing for the answer path. Every helper
// is a no-op until Init has configured a client.
package telemetry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const (
	serverName   = "templeqa"
	flushTimeout = 5 * time.Second
)

type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// Init configures the global Sentry client and returns a flush func. An
// empty DSN, or a client that fails to start, yields a no-op flush so the
// service keeps answering without tracing.
func Init(cfg Config, logger *zap.Logger) (func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() {}
	if cfg.DSN == "" {
		return noop, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate <= 0 {
		cfg.TracesSampleRate = 1.0
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		ServerName:       serverName,
		Debug:            cfg.Debug,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		TracesSampler:    sampler(cfg.TracesSampleRate),
	}); err != nil {
		logger.Warn("sentry init failed, continuing without tracing", zap.Error(err))
		return noop, nil
	}

	logger.Info("sentry tracing enabled",
		zap.String("environment", cfg.Environment),
		zap.Float64("sample_rate", cfg.TracesSampleRate))
	return func() { sentry.Flush(flushTimeout) }, nil
}

// sampler drops health probes, keeps child spans consistent with their
// parent and samples root transactions at rate.
func sampler(rate float64) sentry.TracesSampler {
	return func(ctx sentry.SamplingContext) float64 {
		span := ctx.Span
		if span == nil {
			return rate
		}
		if span.Name == "GET /health" {
			return 0
		}
		if span.ParentSpanID != (sentry.SpanID{}) {
			if span.Sampled.Bool() {
				return 1
			}
			return 0
		}
		return rate
	}
}

// SpanAttributes are tagged onto spans opened by StartSpan.
type SpanAttributes struct {
	AskerID   string
	Handler   string
	Operation string
}

// Span is a nil-safe handle around a Sentry span.
type Span struct {
	inner *sentry.Span
}

func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

func (s *Span) SetTag(key, value string) {
	if s.inner != nil && value != "" {
		s.inner.SetTag(key, value)
	}
}

// SetError marks the span failed and reports err on the span's hub.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	CaptureError(s.inner.Context(), err)
}

func (s *Span) Context() context.Context {
	if s.inner != nil {
		return s.inner.Context()
	}
	return context.Background()
}

// StartSpan opens a child of the span already in ctx, or a new transaction
// named name when there is none.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var inner *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		inner = parent.StartChild(name)
	} else {
		inner = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	span := &Span{inner: inner}
	span.SetTag("asker_id", attrs.AskerID)
	span.SetTag("handler", attrs.Handler)
	if attrs.Operation != "" {
		inner.SetData("operation", attrs.Operation)
	}
	return inner.Context(), span
}

// CaptureError reports err on the hub carried by ctx, or the global hub.
func CaptureError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// Degraded records that stage failed but the answer path carried on
// without it. It leaves a breadcrumb for the eventual answer and reports
// err tagged with the stage.
func Degraded(ctx context.Context, stage string, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  "degraded",
		Message:   stage + ": " + err.Error(),
		Level:     sentry.LevelWarning,
		Timestamp: time.Now(),
	}, nil)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("degraded_stage", stage)
		hub.CaptureException(err)
	})
}
