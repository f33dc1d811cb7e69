package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout is middleware that applies a deadline to each request's context.
// Long-running operations, such as whole-course roster deletion, poll the
// context between steps and abort cleanly when the deadline passes.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
