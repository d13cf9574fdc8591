// Package api holds the JSON envelopes shared by every templeqa endpoint.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloo-solutions/templeqa/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse carries a client-safe message and, for domain errors, the
// stable code channels can branch on.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var statusByCode = map[string]int{
	domain.ErrCodeValidation:    http.StatusBadRequest,
	domain.ErrCodeNotFound:      http.StatusNotFound,
	domain.ErrCodeUnauthorized:  http.StatusUnauthorized,
	domain.ErrCodeRateLimited:   http.StatusTooManyRequests,
	domain.ErrCodeUnavailable:   http.StatusServiceUnavailable,
	domain.ErrCodeInternalError: http.StatusInternalServerError,
}

// JSON writes data with the given status. A nil data writes headers only.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP maps an error to its status. Anything that is not a
// known domain error is a 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[domainErr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError writes err as an ErrorResponse. Only domain messages reach
// the client; causes and foreign errors stay server side.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		Error(w, status, http.StatusText(status))
		return
	}
	JSON(w, status, ErrorResponse{Error: domainErr.Message, Code: domainErr.Code})
}
