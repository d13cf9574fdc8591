package intent

import (
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var (
	locationTriggers = []string{"address", "location", "located", "directions", "direction", "map", "parking", "park", "how to get", "how do i get", "how to reach"}
	parkingWords     = []string{"parking", "park"}
)

// LocationHandler answers address, directions and parking questions.
type LocationHandler struct {
	knowledge *domain.Knowledge
}

func NewLocationHandler(k *domain.Knowledge) *LocationHandler {
	return &LocationHandler{knowledge: k}
}

func (h *LocationHandler) Name() string { return NameLocation }

func (h *LocationHandler) Handle(q string, _ time.Time) (string, bool) {
	if h.knowledge == nil || h.knowledge.Temple.Address == "" {
		return "", false
	}
	if !query.ContainsAny(q, locationTriggers...) {
		return "", false
	}

	t := h.knowledge.Temple
	if query.ContainsAny(q, parkingWords...) && t.Parking != "" {
		return "Parking: " + t.Parking + "\nAddress: " + t.Address, true
	}

	lines := []string{"Address: " + t.Address}
	if t.MapURL != "" {
		lines = append(lines, "Map: "+t.MapURL)
	}
	if t.Parking != "" {
		lines = append(lines, "Parking: "+t.Parking)
	}
	return strings.Join(lines, "\n"), true
}
