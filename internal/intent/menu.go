package intent

import (
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var menuTriggers = []string{"menu", "help", "options", "start", "what can you do", "what can i ask"}

var menuTopics = []string{
	"Temple hours (\"is the temple open now?\")",
	"Pooja and sponsorship fees",
	"Upcoming festivals",
	"Today's panchang",
	"Items to bring for a pooja",
	"Contacts and committees",
	"Address and parking",
	"Canteen, prasadam and catering",
}

// MenuHandler lists what the assistant can answer.
type MenuHandler struct {
	knowledge *domain.Knowledge
}

func NewMenuHandler(k *domain.Knowledge) *MenuHandler {
	return &MenuHandler{knowledge: k}
}

func (h *MenuHandler) Name() string { return NameMenu }

func (h *MenuHandler) Handle(q string, _ time.Time) (string, bool) {
	if !query.ContainsAny(q, menuTriggers...) {
		return "", false
	}
	return menuText(), true
}

func menuText() string {
	return "I can help with:\n" + bulletList(menuTopics) +
		"\n\nAsk a question, or reply SUBSCRIBE for temple updates."
}
