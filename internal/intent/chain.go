// Package intent answers queries deterministically from structured temple
// data before the retrieval path is consulted.
package intent

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/templeqa/internal/domain"
)

// Handler recognizes one topic and answers it from structured data. Handle
// returns false when the query is outside the handler's topic.
type Handler interface {
	Name() string
	Handle(query string, now time.Time) (string, bool)
}

// Handler names, in chain order.
const (
	NameSubscription = "subscription"
	NameItems        = "vratam-items"
	NameStory        = "story"
	NameRitual       = "ritual"
	NamePanchang     = "panchang"
	NameFestival     = "festival"
	NameHours        = "hours"
	NameFees         = "fees"
	NameContacts     = "contacts"
	NameCommittee    = "committee"
	NameLocation     = "location"
	NameFood         = "food"
	NameGreeting     = "greeting"
	NameMenu         = "menu"
)

// Chain runs handlers in a fixed order; the first match wins.
type Chain struct {
	handlers []Handler
	logger   *zap.Logger
}

// NewChain creates a Chain over handlers in the given order.
func NewChain(logger *zap.Logger, handlers ...Handler) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{handlers: handlers, logger: logger}
}

// NewDefaultChain builds the standard handler order over k. Specific
// handlers precede generic ones so a general fee listing or greeting never
// swallows a query that names a ritual.
func NewDefaultChain(k *domain.Knowledge, logger *zap.Logger) *Chain {
	schedule := NewSchedule(k)
	return NewChain(logger,
		NewSubscriptionHandler(),
		NewItemsHandler(k),
		NewStoryHandler(k),
		NewRitualHandler(k),
		NewPanchangHandler(k),
		NewFestivalHandler(k),
		NewHoursHandler(k, schedule),
		NewFeesHandler(k),
		NewContactsHandler(k),
		NewCommitteeHandler(k),
		NewLocationHandler(k),
		NewFoodHandler(k),
		NewGreetingHandler(k),
		NewMenuHandler(k),
	)
}

// Handle returns the first handler answer for query.
func (c *Chain) Handle(query string, now time.Time) (string, bool) {
	_, text, ok := c.Resolve(query, now)
	return text, ok
}

// Resolve is Handle that also reports which handler answered.
func (c *Chain) Resolve(query string, now time.Time) (string, string, bool) {
	for _, h := range c.handlers {
		text, ok := c.try(h, query, now)
		if ok {
			return h.Name(), text, true
		}
	}
	return "", "", false
}

// Names returns the handler names in chain order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.handlers))
	for i, h := range c.handlers {
		names[i] = h.Name()
	}
	return names
}

// try runs one handler, converting a panic or an empty answer into no match
// so a broken handler never blocks the rest of the chain.
func (c *Chain) try(h Handler, query string, now time.Time) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("intent handler panicked",
				zap.String("handler", h.Name()),
				zap.String("panic", fmt.Sprint(r)),
			)
			text, ok = "", false
		}
	}()

	text, ok = h.Handle(query, now)
	if ok && text == "" {
		c.logger.Warn("intent handler matched with empty answer", zap.String("handler", h.Name()))
		return "", false
	}
	return text, ok
}
