package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/workpoint-hq/webhook-svc/internal/events"
	"github.com/workpoint-hq/webhook-svc/internal/logging"
)

// EventPublisher is the slice of the event service the recovery middleware
// needs.
type EventPublisher interface {
	Send(ctx context.Context, eventType string, payload any) error
}

// Recovery converts handler panics into a 500 JSON response and best-effort
// publishes an error.occurred event describing the failure. Publishing is a
// soft-failure call site: a broker error is logged and never changes the
// HTTP response.
func Recovery(svc EventPublisher, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				logger.Error("panic in handler", "path", r.URL.Path, "panic", fmt.Sprintf("%v", rec))

				if svc != nil {
					payload := map[string]any{
						"errorType":  "panic",
						"message":    fmt.Sprintf("%v", rec),
						"endpoint":   r.URL.Path,
						"statusCode": http.StatusInternalServerError,
					}
					if err := svc.Send(r.Context(), events.TypeErrorOccurred, payload); err != nil {
						logger.Error("failed to publish error event", logging.Error(err))
					}
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"type":    "internal_error",
						"title":   "Internal Server Error",
						"message": "an unexpected error occurred",
					},
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
