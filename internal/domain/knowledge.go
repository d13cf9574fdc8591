package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Knowledge is the read-only structured data the intent handlers answer
// from. It is loaded once at startup and never mutated while serving.
type Knowledge struct {
	Temple       TempleInfo             `yaml:"temple"`
	Hours        Hours                  `yaml:"hours"`
	Holidays     []Holiday              `yaml:"holidays"`
	Sponsorships []Sponsorship          `yaml:"sponsorships"`
	WeeklyEvents []WeeklyEvent          `yaml:"weekly_events"`
	Calendar     map[string]CalendarDay `yaml:"calendar"`
	Contacts     []Contact              `yaml:"contacts"`
	Committees   []Committee            `yaml:"committees"`
	Stories      []Story                `yaml:"stories"`
	RitualItems  []RitualItems          `yaml:"ritual_items"`
	Food         FoodInfo               `yaml:"food"`
}

// TempleInfo holds location and identity fields.
type TempleInfo struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	MapURL  string `yaml:"map_url"`
	Parking string `yaml:"parking"`
	Website string `yaml:"website"`
}

// Hours is the weekly opening schedule. Holidays use the weekend sessions.
type Hours struct {
	Weekday []Session `yaml:"weekday"`
	Weekend []Session `yaml:"weekend"`
}

// Session is one open period, as 24-hour "HH:MM" strings.
type Session struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// Minutes returns the session bounds as minutes after midnight.
func (s Session) Minutes() (int, int, error) {
	open, err := ParseClock(s.Open)
	if err != nil {
		return 0, 0, err
	}
	closing, err := ParseClock(s.Close)
	if err != nil {
		return 0, 0, err
	}
	if closing <= open {
		return 0, 0, fmt.Errorf("session %s-%s closes before it opens", s.Open, s.Close)
	}
	return open, closing, nil
}

// Holiday is an additional dated holiday keyed by "MM-DD".
type Holiday struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// Sponsorship is a sponsorable service with up to three fees in dollars.
type Sponsorship struct {
	Key        string   `yaml:"key"`
	Name       string   `yaml:"name"`
	Category   string   `yaml:"category"`
	Aliases    []string `yaml:"aliases"`
	TempleFee  *int     `yaml:"temple_fee"`
	HomeFee    *int     `yaml:"home_fee"`
	SponsorFee *int     `yaml:"sponsor_fee"`
	Notes      string   `yaml:"notes"`
}

// HasFee reports whether at least one fee field is set.
func (s Sponsorship) HasFee() bool {
	return s.TempleFee != nil || s.HomeFee != nil || s.SponsorFee != nil
}

// WeeklyEvent is a recurring ritual on fixed weekdays.
type WeeklyEvent struct {
	Key     string   `yaml:"key"`
	Name    string   `yaml:"name"`
	Days    []string `yaml:"days"`
	Time    string   `yaml:"time"`
	Aliases []string `yaml:"aliases"`
	Notes   string   `yaml:"notes"`
}

// CalendarDay maps a category (tithi, nakshatra, festival, observance) to
// the names listed for that day.
type CalendarDay map[string][]string

// Contact is a person or desk reachable for a role.
type Contact struct {
	Role  string `yaml:"role"`
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
	Email string `yaml:"email"`
}

// Committee is a named group with its members.
type Committee struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// Story is a narrative about a deity or ritual.
type Story struct {
	Key       string   `yaml:"key"`
	Title     string   `yaml:"title"`
	Aliases   []string `yaml:"aliases"`
	Narrative string   `yaml:"narrative"`
}

// RitualItems is the list of items a devotee brings for a ritual.
type RitualItems struct {
	Key     string   `yaml:"key"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Items   []string `yaml:"items"`
}

// FoodInfo describes canteen and catering services.
type FoodInfo struct {
	Canteen         string `yaml:"canteen"`
	CanteenHours    string `yaml:"canteen_hours"`
	Prasadam        string `yaml:"prasadam"`
	Catering        string `yaml:"catering"`
	CateringContact string `yaml:"catering_contact"`
}

// CalendarKey formats a month and day as the "MM-DD" calendar key.
func CalendarKey(month time.Month, day int) string {
	return fmt.Sprintf("%02d-%02d", int(month), day)
}

// CalendarEntries returns the calendar record for a month and day.
func (k *Knowledge) CalendarEntries(month time.Month, day int) (CalendarDay, bool) {
	if k == nil || k.Calendar == nil {
		return nil, false
	}
	entry, ok := k.Calendar[CalendarKey(month, day)]
	if !ok || len(entry) == 0 {
		return nil, false
	}
	return entry, true
}

// HolidayOn returns the extra dated holiday for a month and day, if any.
func (k *Knowledge) HolidayOn(month time.Month, day int) (Holiday, bool) {
	if k == nil {
		return Holiday{}, false
	}
	key := CalendarKey(month, day)
	for _, h := range k.Holidays {
		if h.Date == key {
			return h, true
		}
	}
	return Holiday{}, false
}

// FeeByKey returns the sponsorship with the given key.
func (k *Knowledge) FeeByKey(key string) (Sponsorship, bool) {
	if k == nil {
		return Sponsorship{}, false
	}
	for _, s := range k.Sponsorships {
		if sameKey(s.Key, key) {
			return s, true
		}
	}
	return Sponsorship{}, false
}

// FeesByCategory returns the sponsorships in a category, in file order.
func (k *Knowledge) FeesByCategory(category string) []Sponsorship {
	if k == nil {
		return nil
	}
	var out []Sponsorship
	for _, s := range k.Sponsorships {
		if strings.EqualFold(s.Category, category) {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns the distinct sponsorship categories in first-seen order.
func (k *Knowledge) Categories() []string {
	if k == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, s := range k.Sponsorships {
		c := strings.ToLower(s.Category)
		if _, ok := seen[c]; ok || c == "" {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// WeeklyEventByKey returns the weekly event with the given key.
func (k *Knowledge) WeeklyEventByKey(key string) (WeeklyEvent, bool) {
	if k == nil {
		return WeeklyEvent{}, false
	}
	for _, e := range k.WeeklyEvents {
		if sameKey(e.Key, key) {
			return e, true
		}
	}
	return WeeklyEvent{}, false
}

// ContactByRole returns the contact for a role.
func (k *Knowledge) ContactByRole(role string) (Contact, bool) {
	if k == nil {
		return Contact{}, false
	}
	for _, c := range k.Contacts {
		if strings.EqualFold(c.Role, role) {
			return c, true
		}
	}
	return Contact{}, false
}

// ItemsByKey returns the ritual item list with the given key.
func (k *Knowledge) ItemsByKey(key string) (RitualItems, bool) {
	if k == nil {
		return RitualItems{}, false
	}
	for _, r := range k.RitualItems {
		if sameKey(r.Key, key) {
			return r, true
		}
	}
	return RitualItems{}, false
}

// sameKey compares entry keys ignoring case and treating "_", "-" and
// spaces alike, so "satyanarayana_vratam" names the same ritual across
// tables.
func sameKey(a, b string) bool {
	return strings.EqualFold(keyFolder.Replace(a), keyFolder.Replace(b))
}

var keyFolder = strings.NewReplacer("_", " ", "-", " ")

// CalendarKeys returns the calendar keys in chronological order.
func (k *Knowledge) CalendarKeys() []string {
	if k == nil {
		return nil
	}
	keys := make([]string, 0, len(k.Calendar))
	for key := range k.Calendar {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ValidateKnowledge checks the fields the handlers depend on being well-formed.
func ValidateKnowledge(k *Knowledge) error {
	if k == nil {
		return ErrKnowledgeInvalid
	}
	for _, group := range [][]Session{k.Hours.Weekday, k.Hours.Weekend} {
		for _, s := range group {
			if _, _, err := s.Minutes(); err != nil {
				return NewDomainErrorWithCause(ErrCodeValidation, ErrKnowledgeInvalid.Message, err)
			}
		}
	}
	for key := range k.Calendar {
		if _, _, err := ParseCalendarKey(key); err != nil {
			return NewDomainErrorWithCause(ErrCodeValidation, ErrKnowledgeInvalid.Message, err)
		}
	}
	for _, h := range k.Holidays {
		if _, _, err := ParseCalendarKey(h.Date); err != nil {
			return NewDomainErrorWithCause(ErrCodeValidation, ErrKnowledgeInvalid.Message, err)
		}
	}
	seen := make(map[string]struct{})
	for _, s := range k.Sponsorships {
		if s.Key == "" || s.Name == "" {
			return NewDomainErrorWithCause(ErrCodeValidation, ErrKnowledgeInvalid.Message,
				fmt.Errorf("sponsorship %q: key and name are required", s.Name))
		}
		if _, dup := seen[s.Key]; dup {
			return NewDomainErrorWithCause(ErrCodeValidation, ErrKnowledgeInvalid.Message,
				fmt.Errorf("duplicate sponsorship key %q", s.Key))
		}
		seen[s.Key] = struct{}{}
	}
	return nil
}

// ParseClock parses a 24-hour "HH:MM" value into minutes after midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	return h*60 + m, nil
}

// ParseCalendarKey parses an "MM-DD" key.
func ParseCalendarKey(key string) (time.Month, int, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid calendar key %q", key)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("invalid month in calendar key %q", key)
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d < 1 || d > 31 {
		return 0, 0, fmt.Errorf("invalid day in calendar key %q", key)
	}
	return time.Month(m), d, nil
}
