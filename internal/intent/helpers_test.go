package intent

import (
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/cloo-solutions/templeqa/internal/knowledge"
	"github.com/cloo-solutions/templeqa/internal/query"
)

func loadKnowledge(t *testing.T) *domain.Knowledge {
	t.Helper()
	k, err := knowledge.Load(filepath.Join("..", "..", "data", "knowledge.yaml"))
	require.NoError(t, err)
	return k
}

// at parses a local New York time such as "2026-10-16 10:00".
func at(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return ts
}

// ask runs raw text through normalization and handler h.
func ask(h Handler, raw string, now time.Time) (string, bool) {
	return h.Handle(query.Normalize(raw), now)
}
