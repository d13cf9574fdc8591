package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/api"
	"github.com/cloo-solutions/templeqa/internal/api/middleware"
	"github.com/cloo-solutions/templeqa/internal/domain"
)

// Answerer turns a query into an answer. It never fails.
type Answerer interface {
	Answer(ctx context.Context, q domain.Query) domain.Answer
}

type AnswerHandler struct {
	answerer Answerer
}

func NewAnswerHandler(answerer Answerer) *AnswerHandler {
	return &AnswerHandler{answerer: answerer}
}

// AnswerRequest is the inbound message from a messaging channel.
// ReferenceTime is RFC 3339 and optional.
type AnswerRequest struct {
	Query         string `json:"query"`
	AskerID       string `json:"asker_id"`
	ReferenceTime string `json:"reference_time,omitempty"`
}

type AnswerResponse struct {
	Answer  string `json:"answer"`
	Handler string `json:"handler,omitempty"`
	State   string `json:"state"`
}

func (h *AnswerHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		api.HandleError(w, domain.ErrEmptyQuery)
		return
	}

	var ref time.Time
	if req.ReferenceTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.ReferenceTime)
		if err != nil {
			api.HandleError(w, domain.ErrInvalidReference)
			return
		}
		ref = parsed
	}

	askerID := req.AskerID
	if askerID == "" {
		askerID = middleware.AskerID(r)
	}

	answer := h.answerer.Answer(r.Context(), domain.NewQuery(req.Query, ref, askerID))

	api.Success(w, http.StatusOK, AnswerResponse{
		Answer:  answer.Text,
		Handler: answer.Handler,
		State:   string(answer.State),
	})
}
