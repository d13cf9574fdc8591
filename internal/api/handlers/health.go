package handlers

import (
	"net/http"
	"time"

	"github.com/cloo-solutions/templeqa/internal/api"
	"github.com/cloo-solutions/templeqa/internal/domain"
)

// Corpus reports how many document chunks are loaded.
type Corpus interface {
	Len() int
}

// StatusSource reports the temple's open or closed state.
type StatusSource interface {
	Status(now time.Time) (string, error)
}

type HealthHandler struct {
	corpus   Corpus
	handlers []string
}

func NewHealthHandler(corpus Corpus, handlerNames []string) *HealthHandler {
	return &HealthHandler{corpus: corpus, handlers: handlerNames}
}

type HealthResponse struct {
	Status   string   `json:"status"`
	Chunks   int      `json:"chunks"`
	Handlers []string `json:"handlers"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Handlers: h.handlers}
	if h.corpus != nil {
		resp.Chunks = h.corpus.Len()
	}
	if resp.Handlers == nil {
		resp.Handlers = []string{}
	}
	api.Success(w, http.StatusOK, resp)
}

type StatusHandler struct {
	source StatusSource
	loc    *time.Location
	clock  func() time.Time
}

func NewStatusHandler(source StatusSource, loc *time.Location, clock func() time.Time) *StatusHandler {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = time.Now
	}
	return &StatusHandler{source: source, loc: loc, clock: clock}
}

type StatusResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	now := h.clock().In(h.loc)
	status, err := h.source.Status(now)
	if err != nil {
		api.HandleError(w, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "temple status unavailable", err))
		return
	}
	api.Success(w, http.StatusOK, StatusResponse{Status: status, Time: now.Format(time.RFC3339)})
}
