package intent

import (
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

// greetingWords is the whole vocabulary a greeting may be drawn from.
var greetingWords = map[string]struct{}{
	"hi": {}, "hii": {}, "hello": {}, "hey": {}, "hiya": {}, "namaste": {}, "namaskaram": {},
	"namaskar": {}, "vanakkam": {}, "there": {}, "hari": {}, "om": {}, "jai": {}, "shri": {},
	"sri": {}, "ram": {}, "govinda": {}, "greetings": {}, "all": {}, "everyone": {}, "friends": {},
}

var timeOfDay = map[string]struct{}{"morning": {}, "afternoon": {}, "evening": {}}

// GreetingHandler welcomes the asker with the menu. It matches only when the
// entire query is a greeting, so "hi there, can you open the door" is not one.
type GreetingHandler struct {
	knowledge *domain.Knowledge
}

func NewGreetingHandler(k *domain.Knowledge) *GreetingHandler {
	return &GreetingHandler{knowledge: k}
}

func (h *GreetingHandler) Name() string { return NameGreeting }

func (h *GreetingHandler) Handle(q string, _ time.Time) (string, bool) {
	if !IsGreeting(q) {
		return "", false
	}
	return "Namaste! Welcome to " + templeName(h.knowledge) + ".\n\n" + menuText(), true
}

// IsGreeting reports whether every word of q is greeting vocabulary, or q
// opens with a time-of-day greeting such as "good morning".
func IsGreeting(q string) bool {
	words := query.Words(q)
	if len(words) == 0 {
		return false
	}
	if len(words) >= 2 && words[0] == "good" {
		if _, ok := timeOfDay[words[1]]; ok {
			return true
		}
	}
	for _, w := range words {
		if _, ok := greetingWords[w]; !ok {
			return false
		}
	}
	// A lone filler word such as "there" or "all" is not a greeting.
	for _, w := range words {
		switch w {
		case "there", "all", "everyone", "friends":
		default:
			return true
		}
	}
	return false
}

func templeName(k *domain.Knowledge) string {
	if k != nil && strings.TrimSpace(k.Temple.Name) != "" {
		return k.Temple.Name
	}
	return "the temple"
}
