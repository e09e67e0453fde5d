package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const readyTimeout = 2 * time.Second

// HealthCheck reports whether a dependency can serve requests.
type HealthCheck func(ctx context.Context) error

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler answers liveness probes; it never touches dependencies.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, r, http.StatusOK, "ok")
}

// readyHandler runs check with a short deadline and answers 503 when it fails.
func readyHandler(check HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.WarnContext(r.Context(), "readiness check failed", "error", err)
				writeHealth(w, r, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		writeHealth(w, r, http.StatusOK, "ready")
	}
}

func writeHealth(w http.ResponseWriter, r *http.Request, code int, status string) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		return
	}
	WriteJSON(w, code, healthResponse{Status: status})
}
