// Package health exposes the liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is anything that can confirm a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// Readiness reports ready once every backend answers a ping. A nil
// pinger is skipped, so the memory-backed deployment with no database
// is always ready.
func Readiness(pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		type resp struct {
			Status   string            `json:"status"`
			Backends map[string]string `json:"backends,omitempty"`
		}
		out := resp{Status: "ready", Backends: map[string]string{}}
		ready := true
		for name, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				out.Backends[name] = err.Error()
				ready = false
				continue
			}
			out.Backends[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		if !ready {
			out.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
