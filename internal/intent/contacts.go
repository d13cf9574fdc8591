package intent

import (
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var contactTriggers = []string{"contact", "contacts", "phone", "email", "e-mail", "call", "number", "reach", "priest", "priests", "office", "whom to talk"}

// ContactsHandler returns phone and email contacts, for one role when named.
type ContactsHandler struct {
	knowledge *domain.Knowledge
}

func NewContactsHandler(k *domain.Knowledge) *ContactsHandler {
	return &ContactsHandler{knowledge: k}
}

func (h *ContactsHandler) Name() string { return NameContacts }

func (h *ContactsHandler) Handle(q string, _ time.Time) (string, bool) {
	if h.knowledge == nil || len(h.knowledge.Contacts) == 0 {
		return "", false
	}
	if !query.ContainsAny(q, contactTriggers...) {
		return "", false
	}

	var lines []string
	for _, c := range h.knowledge.Contacts {
		if query.ContainsAny(q, c.Role, c.Role+"s") {
			lines = append(lines, formatContact(c))
		}
	}
	if len(lines) == 0 {
		for _, c := range h.knowledge.Contacts {
			lines = append(lines, formatContact(c))
		}
	}
	return "Contacts:\n" + bulletList(lines), true
}

func formatContact(c domain.Contact) string {
	parts := []string{capitalize(c.Role)}
	if c.Name != "" {
		parts[0] += " (" + c.Name + ")"
	}
	if c.Phone != "" {
		parts = append(parts, "phone "+c.Phone)
	}
	if c.Email != "" {
		parts = append(parts, "email "+c.Email)
	}
	return strings.Join(parts, ", ")
}
