package intent

import "time"

// federalHolidays returns the US federal holidays in year keyed by date,
// including the observed weekday for fixed-date holidays falling on a weekend.
func federalHolidays(year int, loc *time.Location) map[string]string {
	fixed := func(m time.Month, d int) time.Time { return time.Date(year, m, d, 0, 0, 0, 0, loc) }

	out := make(map[string]string)
	add := func(t time.Time, name string) {
		out[dateKey(t)] = name
	}
	addObserved := func(t time.Time, name string) {
		add(t, name)
		switch t.Weekday() {
		case time.Saturday:
			add(t.AddDate(0, 0, -1), name+" (observed)")
		case time.Sunday:
			add(t.AddDate(0, 0, 1), name+" (observed)")
		}
	}

	addObserved(fixed(time.January, 1), "New Year's Day")
	add(nthWeekday(year, time.January, time.Monday, 3, loc), "Martin Luther King Jr. Day")
	add(nthWeekday(year, time.February, time.Monday, 3, loc), "Presidents' Day")
	add(lastWeekday(year, time.May, time.Monday, loc), "Memorial Day")
	addObserved(fixed(time.June, 19), "Juneteenth")
	addObserved(fixed(time.July, 4), "Independence Day")
	add(nthWeekday(year, time.September, time.Monday, 1, loc), "Labor Day")
	add(nthWeekday(year, time.October, time.Monday, 2, loc), "Columbus Day")
	addObserved(fixed(time.November, 11), "Veterans Day")
	add(nthWeekday(year, time.November, time.Thursday, 4, loc), "Thanksgiving Day")
	addObserved(fixed(time.December, 25), "Christmas Day")

	// New Year's Day of the following year is observed on Dec 31 when it
	// falls on a Saturday.
	if next := fixed(time.January, 1).AddDate(1, 0, 0); next.Weekday() == time.Saturday {
		add(next.AddDate(0, 0, -1), "New Year's Day (observed)")
	}
	return out
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

func lastWeekday(year int, month time.Month, wd time.Weekday, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
