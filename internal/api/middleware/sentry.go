package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// SentryMiddleware opens one transaction per request, continuing an incoming
// sentry-trace header, and tags it with the request and asker ids. Without
// an initialized client the transaction is never sent.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		opts := []sentry.SpanOption{
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
		}
		if trace := r.Header.Get(sentry.SentryTraceHeader); trace != "" {
			opts = append(opts, sentry.ContinueFromHeaders(trace, r.Header.Get(sentry.SentryBaggageHeader)))
		}
		tx := sentry.StartTransaction(r.Context(), r.Method+" "+r.URL.Path, opts...)
		defer tx.Finish()

		r = r.WithContext(sentry.SetHubOnContext(tx.Context(), hub))
		tagRequest(hub, tx, r)

		defer func() {
			if err := recover(); err != nil {
				tx.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), err)
				panic(err)
			}
		}()

		rec := &sentryResponseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		tx.Status = httpStatusToSpanStatus(rec.status)
		tx.SetData("http.response.status_code", rec.status)

		// Answers always return 2xx, so a 5xx means the transport itself broke
		if rec.status >= http.StatusInternalServerError {
			hub.CaptureMessage(fmt.Sprintf("HTTP %d on %s", rec.status, r.URL.Path))
		}
	})
}

func tagRequest(hub *sentry.Hub, tx *sentry.Span, r *http.Request) {
	scope := hub.Scope()
	scope.SetContext("request", sentry.Context{
		"method":      r.Method,
		"path":        r.URL.Path,
		"remote_addr": r.RemoteAddr,
	})
	for tag, value := range map[string]string{
		"request_id": GetRequestID(r.Context()),
		"asker_id":   AskerID(r),
	} {
		if value != "" {
			scope.SetTag(tag, value)
			tx.SetTag(tag, value)
		}
	}
	if ua := r.UserAgent(); ua != "" {
		scope.SetTag("user_agent", ua)
	}
}

var spanStatusByHTTP = map[int]sentry.SpanStatus{
	http.StatusUnauthorized:       sentry.SpanStatusUnauthenticated,
	http.StatusForbidden:          sentry.SpanStatusPermissionDenied,
	http.StatusNotFound:           sentry.SpanStatusNotFound,
	http.StatusTooManyRequests:    sentry.SpanStatusResourceExhausted,
	499:                           sentry.SpanStatusCanceled,
	http.StatusServiceUnavailable: sentry.SpanStatusUnavailable,
	http.StatusGatewayTimeout:     sentry.SpanStatusDeadlineExceeded,
}

func httpStatusToSpanStatus(status int) sentry.SpanStatus {
	if s, ok := spanStatusByHTTP[status]; ok {
		return s
	}
	switch {
	case status >= 200 && status < 300:
		return sentry.SpanStatusOK
	case status >= 400 && status < 500:
		return sentry.SpanStatusInvalidArgument
	case status >= 500:
		return sentry.SpanStatusInternalError
	default:
		return sentry.SpanStatusUnknown
	}
}

// sentryResponseRecorder captures the status code; it starts at 200 for
// handlers that only call Write.
type sentryResponseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *sentryResponseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
