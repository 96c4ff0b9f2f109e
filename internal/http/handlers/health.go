package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger is satisfied by cache.Cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckHandler reports 503 when the database or the court cache does
// not answer within two seconds. Either dependency may be nil.
func HealthCheckHandler(db Pinger, courtCache CachePinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				log.Error("Health check failed", "dependency", "database", "error", err)
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if courtCache != nil {
			if err := courtCache.Ping(ctx); err != nil {
				log.Error("Health check failed", "dependency", "cache", "error", err)
				http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}
