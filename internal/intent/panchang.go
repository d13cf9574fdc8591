package intent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var (
	panchangTriggers = []string{"panchang", "tithi", "nakshatra", "nakshatram", "star today", "todays star"}
	tomorrowWords    = []string{"tomorrow"}
)

// calendarCategories is the display order for a calendar day.
var calendarCategories = []string{"tithi", "nakshatra", "festival", "observance"}

// PanchangHandler reports the calendar entries for today, tomorrow or an
// explicit date.
type PanchangHandler struct {
	knowledge *domain.Knowledge
}

func NewPanchangHandler(k *domain.Knowledge) *PanchangHandler {
	return &PanchangHandler{knowledge: k}
}

func (h *PanchangHandler) Name() string { return NamePanchang }

func (h *PanchangHandler) Handle(q string, now time.Time) (string, bool) {
	if !query.ContainsAny(q, panchangTriggers...) {
		return "", false
	}

	date, label := h.resolve(q, now)
	entry, ok := h.knowledge.CalendarEntries(date.Month(), date.Day())
	if !ok {
		return "", false
	}

	lines := formatCalendarDay(entry)
	if len(lines) == 0 {
		return "", false
	}
	return fmt.Sprintf("Panchang for %s:\n%s", label, strings.Join(lines, "\n")), true
}

// resolve picks the date the query asks about and its display label. An
// explicit date always wins over "today" and "tomorrow".
func (h *PanchangHandler) resolve(q string, now time.Time) (time.Time, string) {
	if t, ok := explicitDate(q, now); ok {
		return t, dateLabel(t)
	}
	if query.ContainsAny(q, tomorrowWords...) {
		t := now.AddDate(0, 0, 1)
		return t, "Tomorrow (" + dateLabel(t) + ")"
	}
	return now, "Today (" + dateLabel(now) + ")"
}

// formatCalendarDay renders known categories first, then any others sorted.
func formatCalendarDay(entry domain.CalendarDay) []string {
	var lines []string
	seen := make(map[string]struct{})
	add := func(category string) {
		names := entry[category]
		seen[category] = struct{}{}
		if len(names) == 0 {
			return
		}
		lines = append(lines, fmt.Sprintf("%s: %s", capitalize(category), strings.Join(names, ", ")))
	}
	for _, c := range calendarCategories {
		add(c)
	}
	var rest []string
	for c := range entry {
		if _, ok := seen[c]; !ok {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	for _, c := range rest {
		add(c)
	}
	return lines
}
