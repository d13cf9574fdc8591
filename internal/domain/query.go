package domain

import (
	"strings"
	"time"
)

// Query is a single inbound question. It is created per request and never
// mutated after it is received.
type Query struct {
	Text          string
	ReferenceTime time.Time
	AskerID       string
}

// NewQuery creates a Query. A zero reference time is resolved by the
// dispatcher against its clock.
func NewQuery(text string, referenceTime time.Time, askerID string) Query {
	return Query{
		Text:          text,
		ReferenceTime: referenceTime,
		AskerID:       strings.TrimSpace(askerID),
	}
}

// DispatchState records where a query finished in the dispatcher.
type DispatchState string

const (
	DispatchStateStart       DispatchState = "start"
	DispatchStateHandled     DispatchState = "handled"
	DispatchStateRAGFallback DispatchState = "rag_fallback"
	DispatchStateAnswered    DispatchState = "answered"
)

// Answer is the dispatcher's result: the text shown to the asker plus the
// name of the handler that produced it (empty for RAG answers).
type Answer struct {
	Text    string
	Handler string
	State   DispatchState
}
