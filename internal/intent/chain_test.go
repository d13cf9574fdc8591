package intent

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloo-solutions/templeqa/internal/query"
)

type stubHandler struct {
	name  string
	text  string
	match bool
	panic bool
}

func (s stubHandler) Name() string { return s.name }

func (s stubHandler) Handle(string, time.Time) (string, bool) {
	if s.panic {
		panic("boom")
	}
	return s.text, s.match
}

func TestChain_FirstMatchWins(t *testing.T) {
	c := NewChain(zap.NewNop(),
		stubHandler{name: "a"},
		stubHandler{name: "b", text: "from b", match: true},
		stubHandler{name: "c", text: "from c", match: true},
	)
	name, text, ok := c.Resolve("anything", time.Now())
	require.True(t, ok)
	assert.Equal(t, "b", name)
	assert.Equal(t, "from b", text)
}

func TestChain_PanicIsNoMatch(t *testing.T) {
	c := NewChain(zap.NewNop(),
		stubHandler{name: "broken", panic: true},
		stubHandler{name: "ok", text: "fine", match: true},
	)
	text, ok := c.Handle("anything", time.Now())
	require.True(t, ok)
	assert.Equal(t, "fine", text)
}

func TestChain_EmptyAnswerIsNoMatch(t *testing.T) {
	c := NewChain(nil, stubHandler{name: "empty", match: true})
	_, ok := c.Handle("anything", time.Now())
	assert.False(t, ok)
}

func TestDefaultChain_Order(t *testing.T) {
	c := NewDefaultChain(loadKnowledge(t), zap.NewNop())
	assert.Equal(t, []string{
		NameSubscription, NameItems, NameStory, NameRitual, NamePanchang, NameFestival, NameHours,
		NameFees, NameContacts, NameCommittee, NameLocation, NameFood, NameGreeting, NameMenu,
	}, c.Names())
}

func TestDefaultChain_NilKnowledgeNeverPanics(t *testing.T) {
	c := NewDefaultChain(nil, zap.NewNop())
	for _, q := range []string{"hours", "fees", "panchang today", "items for abhishekam", "hi", "menu", "stop"} {
		assert.NotPanics(t, func() { c.Handle(query.Normalize(q), time.Now()) }, q)
	}
}

// Each case names a query that matches more than one handler's keywords and
// the handler that must answer it.
func TestDefaultChain_OrderingPairs(t *testing.T) {
	c := NewDefaultChain(loadKnowledge(t), zap.NewNop())
	now := at(t, "2026-10-14 10:00")

	tests := []struct {
		query   string
		want    string
		loser   string
		contain string
	}{
		{"items for satyanarayana vratam", NameItems, NameFees, "Coconuts"},
		{"items needed for griha pravesam", NameItems, NameRitual, "Kalasam"},
		{"significance of kalyanam", NameStory, NameRitual, "celestial wedding"},
		{"story of balaji", NameStory, NameGreeting, "Venkateswara"},
		{"kalyanam timings", NameRitual, NameHours, "Saturdays at 11:00 AM"},
		{"abhishekam fees", NameRitual, NameFees, "$151"},
		{"how much is satyanarayana vratam", NameRitual, NameFees, "$251 at home"},
		{"panchang for tomorrow", NamePanchang, NameFestival, "Tomorrow (October 15)"},
		{"is the temple open on diwali", NameFestival, NameHours, "Deepavali"},
		{"upcoming festivals", NameFestival, NameMenu, "Dussehra"},
		{"hi, what are the temple hours", NameHours, NameGreeting, "OPEN until 12:00 PM"},
		{"help with pooja fees", NameFees, NameMenu, "Archana"},
		{"contact the executive committee", NameContacts, NameCommittee, "(908) 555-0100"},
		{"executive committee members", NameCommittee, NameContacts, "Padma Rao"},
		{"parking near the canteen", NameLocation, NameFood, "Free parking"},
		{"where is the canteen", NameFood, NameLocation, "South Indian"},
		{"hi", NameGreeting, NameMenu, "Namaste"},
		{"stop", NameSubscription, NameMenu, "unsubscribed"},
		{"start updates", NameSubscription, NameMenu, "subscribed"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			name, text, ok := c.Resolve(query.Normalize(tt.query), now)
			require.True(t, ok)
			assert.Equal(t, tt.want, name, "answered by %s, not %s", name, tt.want)
			assert.NotEqual(t, tt.loser, name)
			assert.Contains(t, text, tt.contain)
		})
	}
}

func TestDefaultChain_ItemsNotFeeList(t *testing.T) {
	c := NewDefaultChain(loadKnowledge(t), zap.NewNop())
	text, ok := c.Handle(query.Normalize("items for satyanarayana vratam"), at(t, "2026-10-14 10:00"))
	require.True(t, ok)
	assert.Contains(t, text, "Items to bring for Satyanarayana Vratam")
	assert.NotContains(t, text, "$")
}

func TestDefaultChain_GreetingStrictness(t *testing.T) {
	c := NewDefaultChain(loadKnowledge(t), zap.NewNop())
	now := at(t, "2026-10-14 10:00")

	name, _, _ := c.Resolve(query.Normalize("hi there, can you open the door"), now)
	assert.NotEqual(t, NameGreeting, name)

	name, _, ok := c.Resolve(query.Normalize("hi"), now)
	require.True(t, ok)
	assert.Equal(t, NameGreeting, name)
}

var placeholder = regexp.MustCompile(`\{[^}]*\}|%[a-zA-Z!]|<nil>|\$\s|\$$|\$[^0-9]|\(MISSING\)|\[\]`)

func TestDefaultChain_NoUnfilledPlaceholders(t *testing.T) {
	c := NewDefaultChain(loadKnowledge(t), zap.NewNop())
	queries := []string{
		"pooja fees", "homam fees", "archana price", "abhishekam cost", "kalyanam", "kalyanam fees",
		"satyanarayana vratam", "griha pravesam fee", "annaprasana cost", "sponsorship",
		"temple hours", "is it open now", "holiday hours", "upcoming festivals", "festivals in march",
		"panchang for dec 15", "contacts", "priest phone", "committees",
		"address", "parking", "food", "catering", "prasadam", "menu", "hi", "subscribe", "stop",
		"items for abhishekam", "what items should i bring", "story of ganesha", "when is suprabhatam",
	}
	times := []string{"2026-10-14 10:00", "2026-10-16 13:00", "2026-11-26 10:00", "2026-12-24 22:00"}
	for _, ts := range times {
		now := at(t, ts)
		for _, q := range queries {
			text, ok := c.Handle(query.Normalize(q), now)
			require.True(t, ok, "%q at %s", q, ts)
			assert.NotEmpty(t, text)
			for _, line := range strings.Split(text, "\n") {
				assert.False(t, placeholder.MatchString(line), "%q at %s produced %q", q, ts, line)
			}
		}
	}
}
