package intent

import (
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/query"
)

var committeeTriggers = []string{"committee", "committees", "board", "trustees", "members", "volunteers", "management"}

// CommitteeHandler lists committees, or the members of a named one.
type CommitteeHandler struct {
	knowledge *domain.Knowledge
}

func NewCommitteeHandler(k *domain.Knowledge) *CommitteeHandler {
	return &CommitteeHandler{knowledge: k}
}

func (h *CommitteeHandler) Name() string { return NameCommittee }

func (h *CommitteeHandler) Handle(q string, _ time.Time) (string, bool) {
	if h.knowledge == nil || len(h.knowledge.Committees) == 0 {
		return "", false
	}
	if !query.ContainsAny(q, committeeTriggers...) {
		return "", false
	}

	for _, c := range h.knowledge.Committees {
		short := strings.TrimSuffix(strings.ToLower(c.Name), " committee")
		if query.ContainsAny(q, c.Name, short) && len(c.Members) > 0 {
			return c.Name + " members:\n" + bulletList(c.Members), true
		}
	}

	lines := make([]string, 0, len(h.knowledge.Committees))
	for _, c := range h.knowledge.Committees {
		line := c.Name
		if len(c.Members) > 0 {
			line += ": " + strings.Join(c.Members, ", ")
		}
		lines = append(lines, line)
	}
	return "Temple committees:\n" + bulletList(lines), true
}
