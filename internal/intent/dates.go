package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/query"
)

var slashDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)

// monthByWord resolves a month name or abbreviation.
func monthByWord(word string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if word == name {
			return m, true
		}
		for _, alias := range query.Months[name] {
			if word == alias {
				return m, true
			}
		}
	}
	return 0, false
}

// dayNumber parses "15", "15th", "1st" or "22nd".
func dayNumber(word string) (int, bool) {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		word = strings.TrimSuffix(word, suffix)
	}
	d, err := strconv.Atoi(word)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

// explicitDate finds "<month> <day>", "<day> <month>" or "<m>/<d>" in q and
// resolves it in the year and location of now. Anything unparseable or
// impossible, such as "feb 30", is reported as no explicit date.
func explicitDate(q string, now time.Time) (time.Time, bool) {
	if m := slashDate.FindStringSubmatch(q); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			if t, ok := validDate(now, time.Month(month), day); ok {
				return t, true
			}
		}
	}

	words := query.Words(q)
	for i, w := range words {
		month, ok := monthByWord(w)
		if !ok {
			continue
		}
		if i+1 < len(words) {
			if day, ok := dayNumber(words[i+1]); ok {
				if t, ok := validDate(now, month, day); ok {
					return t, true
				}
			}
		}
		if i > 0 {
			if day, ok := dayNumber(words[i-1]); ok {
				if t, ok := validDate(now, month, day); ok {
					return t, true
				}
			}
		}
	}
	return time.Time{}, false
}

func validDate(now time.Time, month time.Month, day int) (time.Time, bool) {
	t := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// dateLabel renders "Month d".
func dateLabel(t time.Time) string {
	return t.Format("January 2")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// nextOccurrence returns the first month/day on or after the date of now,
// looking up to four years ahead so February 29 resolves.
func nextOccurrence(now time.Time, month time.Month, day int) (time.Time, bool) {
	today := startOfDay(now)
	for years := 0; years <= 4; years++ {
		t, ok := validDate(now.AddDate(years, 0, 0), month, day)
		if ok && !t.Before(today) {
			return t, true
		}
	}
	return time.Time{}, false
}
