package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var scheduleWords = []string{"when", "schedule", "hours", "time", "what day", "which day", "days", "held", "performed"}

// RitualHandler answers schedule and fee questions about a named ritual.
type RitualHandler struct {
	knowledge *domain.Knowledge
}

func NewRitualHandler(k *domain.Knowledge) *RitualHandler {
	return &RitualHandler{knowledge: k}
}

func (h *RitualHandler) Name() string { return NameRitual }

func (h *RitualHandler) Handle(q string, _ time.Time) (string, bool) {
	if h.knowledge == nil {
		return "", false
	}
	events := h.events(q)
	fees := h.fees(q)
	if len(events) == 0 && len(fees) == 0 {
		return "", false
	}

	// Fee words are checked before schedule words: "how much is kalyanam
	// on saturday" is a price question.
	wantFees := query.ContainsAny(q, feeTriggers...)
	wantSchedule := !wantFees && query.ContainsAny(q, scheduleWords...)
	if !wantFees && !wantSchedule {
		wantFees, wantSchedule = true, true
	}

	var sections []string
	if wantSchedule {
		if s, ok := scheduleSection(events); ok {
			sections = append(sections, s+h.itemsHint(events))
		}
	}
	if wantFees {
		if s, ok := feeSection(fees); ok {
			sections = append(sections, s)
		}
	}
	if len(sections) == 0 {
		return "", false
	}
	return strings.Join(sections, "\n\n"), true
}

// itemsHint points at the item list of the first event that has one.
func (h *RitualHandler) itemsHint(events []domain.WeeklyEvent) string {
	for _, e := range events {
		if r, ok := h.knowledge.ItemsByKey(e.Key); ok && len(r.Items) > 0 {
			return fmt.Sprintf("\nAsk \"items for %s\" for what to bring.", strings.ToLower(r.Name))
		}
	}
	return ""
}

// events returns weekly events the query names.
func (h *RitualHandler) events(q string) []domain.WeeklyEvent {
	var out []domain.WeeklyEvent
	for _, e := range h.knowledge.WeeklyEvents {
		if mentions(q, e.Key, e.Name, e.Aliases, query.Events) {
			out = append(out, e)
		}
	}
	return out
}

// fees returns sponsorships the query names directly or through their
// ritual category.
func (h *RitualHandler) fees(q string) []domain.Sponsorship {
	categories := make(map[string]struct{})
	for _, canonical := range query.Events.Find(q) {
		categories[canonical] = struct{}{}
	}
	var out []domain.Sponsorship
	for _, s := range h.knowledge.Sponsorships {
		_, byCategory := categories[strings.ToLower(s.Category)]
		if byCategory || mentions(q, s.Key, s.Name, s.Aliases, query.Events) {
			out = append(out, s)
		}
	}
	return out
}

func scheduleSection(events []domain.WeeklyEvent) (string, bool) {
	var lines []string
	for _, e := range events {
		minutes, err := domain.ParseClock(e.Time)
		if err != nil || len(e.Days) == 0 {
			continue
		}
		line := fmt.Sprintf("%s: %s at %s", e.Name, formatDays(e.Days), formatClock(minutes))
		if e.Notes != "" {
			line += ". " + e.Notes
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "", false
	}
	return "Schedule:\n" + bulletList(lines), true
}

func feeSection(fees []domain.Sponsorship) (string, bool) {
	var lines []string
	for _, s := range fees {
		if line, ok := formatFee(s); ok {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", false
	}
	return "Fees:\n" + bulletList(lines), true
}

func formatDays(days []string) string {
	if len(days) == 7 {
		return "Every day"
	}
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = capitalize(d) + "s"
	}
	return strings.Join(out, ", ")
}
