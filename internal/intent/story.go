package intent

import (
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var storyTriggers = []string{"story", "stories", "significance", "meaning", "legend", "history", "importance", "mythology", "why do we", "why is", "who is", "tell me about"}

// StoryHandler tells the narrative behind a deity or ritual.
type StoryHandler struct {
	knowledge *domain.Knowledge
}

func NewStoryHandler(k *domain.Knowledge) *StoryHandler {
	return &StoryHandler{knowledge: k}
}

func (h *StoryHandler) Name() string { return NameStory }

func (h *StoryHandler) Handle(q string, _ time.Time) (string, bool) {
	if h.knowledge == nil || !query.ContainsAny(q, storyTriggers...) {
		return "", false
	}

	// The longest matching surface wins, so "sri venkateswara kalyanam" picks
	// the kalyanam story over the deity's.
	var best *domain.Story
	bestLen := 0
	for i, s := range h.knowledge.Stories {
		if s.Narrative == "" {
			continue
		}
		for _, surface := range surfaces(s.Key, s.Title, s.Aliases, query.Deities, query.Events, query.Festivals) {
			if n := len(query.Words(surface)); n > bestLen && query.ContainsPhrase(q, surface) {
				best, bestLen = &h.knowledge.Stories[i], n
			}
		}
	}
	if best == nil {
		return "", false
	}
	text := best.Title + "\n\n" + best.Narrative
	if e, ok := h.knowledge.WeeklyEventByKey(best.Key); ok {
		if section, ok := scheduleSection([]domain.WeeklyEvent{e}); ok {
			text += "\n\n" + section
		}
	}
	return text, true
}
