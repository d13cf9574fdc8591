package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

// Schedule answers open/closed questions for a reference time. Weekdays use
// the weekday sessions; weekends and holidays use the weekend sessions.
// Festivals never change the schedule.
type Schedule struct {
	knowledge *domain.Knowledge
}

// NewSchedule creates a Schedule over the hours and holidays in k.
func NewSchedule(k *domain.Knowledge) *Schedule {
	return &Schedule{knowledge: k}
}

type span struct {
	open, close int
}

// Holiday returns the holiday name for the calendar date of t, if any.
// Dated holidays in the knowledge file take precedence over federal ones.
func (s *Schedule) Holiday(t time.Time) (string, bool) {
	if h, ok := s.knowledge.HolidayOn(t.Month(), t.Day()); ok {
		return h.Name, true
	}
	name, ok := federalHolidays(t.Year(), t.Location())[dateKey(t)]
	return name, ok
}

// usesWeekendHours reports whether t falls on a weekend or holiday.
func (s *Schedule) usesWeekendHours(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return true
	}
	_, holiday := s.Holiday(t)
	return holiday
}

func (s *Schedule) sessionsFor(t time.Time) ([]span, error) {
	if s.knowledge == nil {
		return nil, domain.ErrEntryNotFound
	}
	sessions := s.knowledge.Hours.Weekday
	if s.usesWeekendHours(t) {
		sessions = s.knowledge.Hours.Weekend
	}
	return toSpans(sessions)
}

func toSpans(sessions []domain.Session) ([]span, error) {
	out := make([]span, 0, len(sessions))
	for _, sess := range sessions {
		open, closing, err := sess.Minutes()
		if err != nil {
			return nil, err
		}
		out = append(out, span{open: open, close: closing})
	}
	return out, nil
}

// Status returns "OPEN until 12:00 PM" or "CLOSED, opens ..." for now.
func (s *Schedule) Status(now time.Time) (string, error) {
	minute := now.Hour()*60 + now.Minute()

	for offset := 0; offset <= 7; offset++ {
		day := now.AddDate(0, 0, offset)
		spans, err := s.sessionsFor(day)
		if err != nil {
			return "", err
		}
		for _, sp := range spans {
			if offset == 0 && minute >= sp.open && minute < sp.close {
				return "OPEN until " + formatClock(sp.close), nil
			}
			if offset == 0 && sp.open <= minute {
				continue
			}
			opens := formatClock(sp.open)
			switch offset {
			case 0:
				return "CLOSED, opens at " + opens, nil
			case 1:
				return "CLOSED, opens tomorrow at " + opens, nil
			default:
				return fmt.Sprintf("CLOSED, opens %s at %s", day.Weekday(), opens), nil
			}
		}
	}
	return "", fmt.Errorf("no opening found within a week: %w", domain.ErrEntryNotFound)
}

// TodayLine describes the sessions for the date of now.
func (s *Schedule) TodayLine(now time.Time) (string, error) {
	spans, err := s.sessionsFor(now)
	if err != nil {
		return "", err
	}
	if name, ok := s.Holiday(now); ok {
		return fmt.Sprintf("Today is %s. Holiday hours: %s", name, formatSpans(spans)), nil
	}
	return fmt.Sprintf("Today's hours (%s): %s", now.Weekday(), formatSpans(spans)), nil
}

// DayLine describes the sessions on the calendar date of day, naming the
// weekday and any holiday.
func (s *Schedule) DayLine(day time.Time) (string, error) {
	spans, err := s.sessionsFor(day)
	if err != nil {
		return "", err
	}
	label := day.Format("Monday, January 2")
	if name, ok := s.Holiday(day); ok {
		label += " (" + name + ")"
	}
	return fmt.Sprintf("Hours on %s: %s", label, formatSpans(spans)), nil
}

// HolidayNamed finds the next date, on or after the day of now, whose
// holiday is mentioned in q. A name matches with or without a trailing
// "Day", the longest mention wins, and observed dates are skipped.
func (s *Schedule) HolidayNamed(q string, now time.Time) (time.Time, bool) {
	today := startOfDay(now)

	var (
		best    time.Time
		bestLen int
	)
	consider := func(date time.Time, name string) {
		if date.Before(today) || strings.Contains(name, "(observed)") {
			return
		}
		lower := strings.ToLower(name)
		for _, phrase := range []string{lower, strings.TrimSuffix(lower, " day")} {
			if !query.ContainsPhrase(q, phrase) {
				continue
			}
			n := len(phrase)
			if n > bestLen || (n == bestLen && date.Before(best)) {
				best, bestLen = date, n
			}
		}
	}

	for year := today.Year(); year <= today.Year()+1; year++ {
		for key, name := range federalHolidays(year, now.Location()) {
			date, err := time.ParseInLocation("2006-01-02", key, now.Location())
			if err == nil {
				consider(date, name)
			}
		}
		if s.knowledge == nil {
			continue
		}
		for _, h := range s.knowledge.Holidays {
			month, day, err := domain.ParseCalendarKey(h.Date)
			if err == nil {
				consider(time.Date(year, month, day, 0, 0, 0, 0, now.Location()), h.Name)
			}
		}
	}
	return best, bestLen > 0
}

// WeeklyLines describes the full weekly schedule.
func (s *Schedule) WeeklyLines() (string, error) {
	if s.knowledge == nil {
		return "", domain.ErrEntryNotFound
	}
	weekday, err := toSpans(s.knowledge.Hours.Weekday)
	if err != nil {
		return "", err
	}
	weekend, err := toSpans(s.knowledge.Hours.Weekend)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Monday to Friday: %s\nSaturday, Sunday and holidays: %s",
		formatSpans(weekday), formatSpans(weekend)), nil
}

func formatSpans(spans []span) string {
	if len(spans) == 0 {
		return "closed"
	}
	parts := make([]string, len(spans))
	for i, sp := range spans {
		parts[i] = formatClock(sp.open) + " - " + formatClock(sp.close)
	}
	return strings.Join(parts, ", ")
}
