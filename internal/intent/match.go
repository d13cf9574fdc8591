package intent

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/templeqa/internal/query"
)

// spaced turns a data key such as "griha_pravesam" into its spoken form.
func spaced(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// surfaces collects every form a knowledge entry can be mentioned by: its
// key, its display name, its own aliases and the shared alias tables for
// the key.
func surfaces(key, name string, aliases []string, tables ...query.AliasTable) []string {
	out := []string{spaced(key)}
	if name != "" {
		out = append(out, name)
	}
	out = append(out, aliases...)
	for _, t := range tables {
		out = append(out, t.Surfaces(spaced(key))...)
	}
	for i, s := range out {
		out[i] = query.Normalize(s)
	}
	return out
}

// mentions reports whether q names an entry by any of its surfaces.
func mentions(q, key, name string, aliases []string, tables ...query.AliasTable) bool {
	return query.ContainsAny(q, surfaces(key, name, aliases, tables...)...)
}

// formatClock renders minutes after midnight as "9:00 AM".
func formatClock(minutes int) string {
	h, m := (minutes/60)%24, minutes%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

// bulletList renders items one per line with a leading dash.
func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
