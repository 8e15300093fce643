package checker

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/coachpulse/coachpulse/internal/domain/notification"
)

// NewTriggerServer exposes the webhook surface the platform scheduler calls:
// POST /v1/run starts one check immediately and returns the run result.
func NewTriggerServer(addr string, h *Handler, clock notification.Clock, log *zap.Logger) *http.Server {
	r := chi.NewRouter()
	r.Post("/v1/run", func(w http.ResponseWriter, req *http.Request) {
		res := h.Run(req.Context(), clock.Now())
		w.Header().Set("Content-Type", "application/json")
		if !res.Success {
			w.WriteHeader(http.StatusInternalServerError)
		}
		if err := json.NewEncoder(w).Encode(res); err != nil {
			log.Warn("encode run result", zap.Error(err))
		}
	})

	return &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "activity-checker.http"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
