package intent

import (
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var itemTriggers = []string{"items", "item list", "samagri", "what to bring", "what should i bring", "things to bring", "materials", "required items", "list of items", "needed"}

// ItemsHandler lists the items a devotee brings for a ritual.
type ItemsHandler struct {
	knowledge *domain.Knowledge
}

func NewItemsHandler(k *domain.Knowledge) *ItemsHandler {
	return &ItemsHandler{knowledge: k}
}

func (h *ItemsHandler) Name() string { return NameItems }

func (h *ItemsHandler) Handle(q string, _ time.Time) (string, bool) {
	if h.knowledge == nil || len(h.knowledge.RitualItems) == 0 {
		return "", false
	}
	if !query.ContainsAny(q, itemTriggers...) {
		return "", false
	}

	for _, r := range h.knowledge.RitualItems {
		if len(r.Items) == 0 {
			continue
		}
		if mentions(q, r.Key, r.Name, r.Aliases, query.Events) {
			text := "Items to bring for " + r.Name + ":\n" + bulletList(r.Items)
			if fee, ok := h.knowledge.FeeByKey(r.Key); ok {
				if line, ok := formatFee(fee); ok {
					text += "\n\nFee: " + line
				}
			}
			return text, true
		}
	}

	// No ritual named: offer the rituals that have lists.
	var names []string
	for _, r := range h.knowledge.RitualItems {
		if len(r.Items) > 0 {
			names = append(names, r.Name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return "I have item lists for: " + strings.Join(names, ", ") +
		". Ask for example \"items for " + strings.ToLower(names[0]) + "\".", true
}
