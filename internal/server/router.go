package server

import (
	"net/http"

	"github.com/cloo-solutions/templeqa/internal/api/handlers"
	"github.com/cloo-solutions/templeqa/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Logger        *zap.Logger
	APIKey        string
	RateLimiter   *middleware.RateLimiter
	AnswerHandler *handlers.AnswerHandler
	HealthHandler *handlers.HealthHandler
	StatusHandler *handlers.StatusHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 64 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))
		r.Use(cfg.RateLimiter.Handler)

		r.Post("/answer", cfg.AnswerHandler.Answer)
		r.Get("/status", cfg.StatusHandler.Status)
	})

	return r
}
