package intent

import (
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var (
	foodTriggers  = []string{"food", "canteen", "cafeteria", "prasadam", "laddu", "catering", "cater", "lunch", "dinner", "meal", "meals", "eat", "kitchen"}
	cateringWords = []string{"catering", "cater", "caterer", "kitchen"}
	prasadamWords = []string{"prasadam", "laddu", "laddus"}
)

// FoodHandler answers canteen, prasadam and catering questions.
type FoodHandler struct {
	knowledge *domain.Knowledge
}

func NewFoodHandler(k *domain.Knowledge) *FoodHandler {
	return &FoodHandler{knowledge: k}
}

func (h *FoodHandler) Name() string { return NameFood }

func (h *FoodHandler) Handle(q string, _ time.Time) (string, bool) {
	if h.knowledge == nil || !query.ContainsAny(q, foodTriggers...) {
		return "", false
	}
	f := h.knowledge.Food

	switch {
	case query.ContainsAny(q, cateringWords...) && f.Catering != "":
		lines := []string{f.Catering}
		if c, ok := h.knowledge.ContactByRole(f.CateringContact); ok {
			lines = append(lines, "Contact: "+formatContact(c))
		}
		return strings.Join(lines, "\n"), true
	case query.ContainsAny(q, prasadamWords...) && f.Prasadam != "":
		return f.Prasadam, true
	}

	var lines []string
	if f.Canteen != "" {
		lines = append(lines, f.Canteen)
	}
	if f.CanteenHours != "" {
		lines = append(lines, "Canteen hours: "+f.CanteenHours)
	}
	if f.Prasadam != "" {
		lines = append(lines, f.Prasadam)
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}
