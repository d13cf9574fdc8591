package query

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultMaxAliasTerms bounds how many alias terms Expand appends.
const DefaultMaxAliasTerms = 6

var numericDate = regexp.MustCompile(`\b\d{1,2}/\d{1,2}\b`)

// Expander augments a normalized query with alias terms to improve recall
// before embedding.
type Expander struct {
	maxTerms int
	tables   []AliasTable
}

// NewExpander creates an Expander appending at most maxTerms alias terms.
func NewExpander(maxTerms int) *Expander {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxAliasTerms
	}
	return &Expander{
		maxTerms: maxTerms,
		tables:   []AliasTable{Deities, Events, Festivals, Weekdays, LunarDays, Months},
	}
}

// Expand returns the query followed by the alias terms of every concept it
// mentions. Terms are the sorted union across tables, truncated to the bound.
// A date-relative query with no explicit month gets the month of now appended
// as a hint; that slot counts toward the bound.
func (e *Expander) Expand(q string, now time.Time) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return q
	}

	terms := make(map[string]struct{})
	for _, table := range e.tables {
		for _, canonical := range table.Find(q) {
			for _, surface := range table.Surfaces(canonical) {
				if ContainsPhrase(q, surface) {
					continue
				}
				terms[surface] = struct{}{}
			}
		}
	}

	aliases := make([]string, 0, len(terms))
	for t := range terms {
		aliases = append(aliases, t)
	}
	sort.Strings(aliases)

	limit := e.maxTerms
	hint := monthHint(q, now)
	if hint != "" {
		limit--
	}
	if len(aliases) > limit {
		aliases = aliases[:limit]
	}

	parts := append([]string{q}, aliases...)
	if hint != "" {
		parts = append(parts, hint)
	}
	return strings.Join(parts, " ")
}

// monthHint returns the month name of now when the query asks about an
// upcoming date and names no month itself.
func monthHint(q string, now time.Time) string {
	if !IsDateRelative(q) {
		return ""
	}
	if len(Months.Find(q)) > 0 || numericDate.MatchString(q) {
		return ""
	}
	return now.Month().String()
}

// IsDateRelative reports whether q asks about an upcoming date without
// naming it, such as "when is the next full moon".
func IsDateRelative(q string) bool {
	return ContainsAny(q, dateRelative...) || len(LunarDays.Find(q)) > 0
}
