// Package deadline lets slow routes outlive the server-wide read and write timeouts.
package deadline

import (
	"context"
	"devEvents/internal/lib/logger/sl"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Extend moves the connection read and write deadlines to now+d and bounds
// the request context by the same duration. Writers that cannot change
// deadlines keep the server defaults.
func Extend(log *slog.Logger, d time.Duration) func(http.Handler) http.Handler {
	log = log.With(slog.String("component", "middleware/deadline"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			until := time.Now().Add(d)

			rc := http.NewResponseController(w)
			if err := rc.SetReadDeadline(until); err != nil && !errors.Is(err, http.ErrNotSupported) {
				log.Warn("failed to extend read deadline", sl.Err(err))
			}
			if err := rc.SetWriteDeadline(until); err != nil && !errors.Is(err, http.ErrNotSupported) {
				log.Warn("failed to extend write deadline", sl.Err(err))
			}

			ctx, cancel := context.WithDeadline(r.Context(), until)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
