package middleware

import (
	"fmt"
	"net/http"

	"github.com/cloo-solutions/templeqa/internal/api"
)

// MaxBodyBytes rejects declared bodies over limit with 413 and caps the
// reader for chunked uploads, so a decoder sees an error instead of
// buffering without bound. A non-positive limit disables the check.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		tooLarge := fmt.Sprintf("request body exceeds %d bytes", limit)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, tooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
