package intent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

const upcomingFestivalCount = 5

var festivalTriggers = []string{"festival", "festivals", "events", "upcoming", "celebration", "celebrations", "utsavam", "utsav"}

// FestivalHandler lists festivals from the calendar. Festivals are
// informational only and do not change temple hours.
type FestivalHandler struct {
	knowledge *domain.Knowledge
}

func NewFestivalHandler(k *domain.Knowledge) *FestivalHandler {
	return &FestivalHandler{knowledge: k}
}

func (h *FestivalHandler) Name() string { return NameFestival }

func (h *FestivalHandler) Handle(q string, now time.Time) (string, bool) {
	if h.knowledge == nil || len(h.knowledge.Calendar) == 0 {
		return "", false
	}

	if lines := h.named(q, now); len(lines) > 0 {
		return bulletList(lines), true
	}
	if !query.ContainsAny(q, festivalTriggers...) {
		return "", false
	}

	if month, ok := h.monthIn(q); ok {
		lines := h.inMonth(month, now)
		if len(lines) == 0 {
			return fmt.Sprintf("No festivals are listed for %s.", month), true
		}
		return fmt.Sprintf("Festivals in %s:\n%s", month, bulletList(lines)), true
	}

	lines := h.upcoming(now, upcomingFestivalCount)
	if len(lines) == 0 {
		return "", false
	}
	return "Upcoming festivals:\n" + bulletList(lines), true
}

// named finds festivals the query names, by calendar name or alias, each
// dated at its next occurrence and listed soonest first.
func (h *FestivalHandler) named(q string, now time.Time) []string {
	type dated struct {
		at   time.Time
		line string
	}
	canonicals := query.Festivals.Find(q)
	var found []dated
	for _, key := range h.knowledge.CalendarKeys() {
		month, day, err := domain.ParseCalendarKey(key)
		if err != nil {
			continue
		}
		for _, name := range h.knowledge.Calendar[key]["festival"] {
			if !query.ContainsPhrase(q, name) && !matchesCanonical(name, canonicals) {
				continue
			}
			t, ok := nextOccurrence(now, month, day)
			if !ok {
				continue
			}
			found = append(found, dated{at: t, line: fmt.Sprintf("%s: %s", name, t.Format("Monday, January 2, 2006"))})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].at.Before(found[j].at) })

	lines := make([]string, len(found))
	for i, f := range found {
		lines[i] = f.line
	}
	return lines
}

func matchesCanonical(name string, canonicals []string) bool {
	for _, c := range canonicals {
		if query.ContainsAny(name, query.Festivals.Surfaces(c)...) {
			return true
		}
	}
	return false
}

func (h *FestivalHandler) monthIn(q string) (time.Month, bool) {
	for _, w := range query.Words(q) {
		if m, ok := monthByWord(w); ok {
			return m, true
		}
	}
	return 0, false
}

func (h *FestivalHandler) inMonth(month time.Month, now time.Time) []string {
	var lines []string
	for day := 1; day <= 31; day++ {
		t, ok := validDate(now, month, day)
		if !ok {
			break
		}
		lines = append(lines, h.festivalLines(t)...)
	}
	return lines
}

// upcoming scans forward from the date of now for the next n festivals,
// covering at most one year.
func (h *FestivalHandler) upcoming(now time.Time, n int) []string {
	var lines []string
	for offset := 0; offset < 366 && len(lines) < n; offset++ {
		lines = append(lines, h.festivalLines(now.AddDate(0, 0, offset))...)
	}
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

func (h *FestivalHandler) festivalLines(t time.Time) []string {
	entry, ok := h.knowledge.CalendarEntries(t.Month(), t.Day())
	if !ok {
		return nil
	}
	names := entry["festival"]
	if len(names) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%s: %s", dateLabel(t), strings.Join(names, ", "))}
}
