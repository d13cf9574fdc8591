package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var (
	hoursTriggers = []string{"hours", "open", "opened", "opening", "close", "closed", "closing", "what time", "schedule"}
	holidayWords  = []string{"holiday", "holidays"}
	rightNowWords = []string{"now", "right now", "today", "currently", "still open", "is it open", "are you open"}
)

// HoursHandler answers open/closed status and the weekly timings.
type HoursHandler struct {
	knowledge *domain.Knowledge
	schedule  *Schedule
}

// NewHoursHandler creates an HoursHandler. A nil schedule is built from k.
func NewHoursHandler(k *domain.Knowledge, schedule *Schedule) *HoursHandler {
	if schedule == nil {
		schedule = NewSchedule(k)
	}
	return &HoursHandler{knowledge: k, schedule: schedule}
}

func (h *HoursHandler) Name() string { return NameHours }

func (h *HoursHandler) Handle(q string, now time.Time) (string, bool) {
	if !query.ContainsAny(q, hoursTriggers...) {
		return "", false
	}

	if day, ok := h.targetDay(q, now); ok {
		line, err := h.schedule.DayLine(day)
		if err != nil {
			return "", false
		}
		return line + ".", true
	}

	status, err := h.schedule.Status(now)
	if err != nil {
		return "", false
	}
	today, err := h.schedule.TodayLine(now)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is %s.\n%s", capitalize(templeName(h.knowledge)), status, today)

	if query.ContainsAny(q, holidayWords...) {
		weekend, err := toSpans(h.knowledge.Hours.Weekend)
		if err != nil {
			return "", false
		}
		fmt.Fprintf(&b, "\n\nOn holidays the temple follows weekend hours: %s.", formatSpans(weekend))
		return b.String(), true
	}

	if !query.ContainsAny(q, rightNowWords...) {
		weekly, err := h.schedule.WeeklyLines()
		if err != nil {
			return "", false
		}
		b.WriteString("\n\n")
		b.WriteString(weekly)
	}
	return b.String(), true
}

// targetDay resolves an explicit or holiday-named date in q that is not the
// date of now. Past explicit dates roll to next year.
func (h *HoursHandler) targetDay(q string, now time.Time) (time.Time, bool) {
	day, ok := explicitDate(q, now)
	if ok {
		if day.Before(startOfDay(now)) {
			day = day.AddDate(1, 0, 0)
		}
	} else if day, ok = h.schedule.HolidayNamed(q, now); !ok {
		return time.Time{}, false
	}
	if dateKey(day) == dateKey(now) {
		return time.Time{}, false
	}
	return day, true
}
