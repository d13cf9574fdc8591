package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var feeTriggers = []string{"fee", "fees", "cost", "costs", "price", "prices", "how much", "charge", "charges", "sponsorship", "sponsor", "donation", "rates"}

// FeesHandler lists sponsorship fees, by category when one is named.
type FeesHandler struct {
	knowledge *domain.Knowledge
}

func NewFeesHandler(k *domain.Knowledge) *FeesHandler {
	return &FeesHandler{knowledge: k}
}

func (h *FeesHandler) Name() string { return NameFees }

func (h *FeesHandler) Handle(q string, _ time.Time) (string, bool) {
	if !query.ContainsAny(q, feeTriggers...) {
		return "", false
	}

	categories := h.knowledge.Categories()
	var named []string
	for _, category := range categories {
		if query.ContainsAny(q, category, category+"s") {
			named = append(named, category)
		}
	}
	if len(named) > 0 {
		categories = named
	}

	var sections []string
	for _, category := range categories {
		if section, ok := h.section(category); ok {
			sections = append(sections, section)
		}
	}
	if len(sections) == 0 {
		return "", false
	}
	return "Sponsorship fees:\n\n" + strings.Join(sections, "\n\n"), true
}

func (h *FeesHandler) section(category string) (string, bool) {
	var lines []string
	for _, s := range h.knowledge.FeesByCategory(category) {
		if line, ok := formatFee(s); ok {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", false
	}
	return capitalize(category) + ":\n" + bulletList(lines), true
}

// formatFee renders one sponsorship with every fee it defines. It declines
// entries without any fee so no line is printed with a missing amount.
func formatFee(s domain.Sponsorship) (string, bool) {
	if !s.HasFee() {
		return "", false
	}
	var parts []string
	if s.TempleFee != nil {
		parts = append(parts, fmt.Sprintf("$%d at the temple", *s.TempleFee))
	}
	if s.HomeFee != nil {
		parts = append(parts, fmt.Sprintf("$%d at home", *s.HomeFee))
	}
	if s.SponsorFee != nil {
		parts = append(parts, fmt.Sprintf("$%d to sponsor", *s.SponsorFee))
	}
	line := s.Name + ": " + strings.Join(parts, ", ")
	if s.Notes != "" {
		line += ". " + s.Notes
	}
	return line, true
}
