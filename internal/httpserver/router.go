package httpserver

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/angeloszaimis/solver-dispatch/internal/circuitbreaker"
)

// BreakerStats is satisfied by *circuitbreaker.Registry.
type BreakerStats interface {
	Stats() map[string]circuitbreaker.State
}

type healthResponse struct {
	Status   string            `json:"status"`
	Breakers map[string]string `json:"breakers"`
}

// NewOpsRouter serves /metrics from the given handler and /healthz with the
// current breaker state of every known remote endpoint.
func NewOpsRouter(metricsHandler http.Handler, breakers BreakerStats) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", healthHandler(breakers))

	return mux
}

func healthHandler(breakers BreakerStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:   "ok",
			Breakers: map[string]string{},
		}
		if breakers != nil {
			for endpoint, state := range breakers.Stats() {
				resp.Breakers[endpoint] = state.String()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
