package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// Pinger is anything whose liveness can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is one named dependency of the health endpoint.
type Check struct {
	Name   string
	Pinger Pinger
}

// HealthHandler probes every check and answers 503 when any of them fails.
// A nil Pinger means the dependency is not configured and is reported as
// "disabled".
func HealthHandler(checks ...Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]interface{}, len(checks))
		for _, chk := range checks {
			deps[chk.Name] = probe(ctx, chk.Pinger)
			if m := deps[chk.Name].(map[string]interface{}); m["status"] == "unhealthy" {
				status = http.StatusServiceUnavailable
			}
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		return c.JSON(status, map[string]interface{}{
			"status":       overall,
			"dependencies": deps,
		})
	}
}

func probe(ctx context.Context, p Pinger) map[string]interface{} {
	if p == nil {
		return map[string]interface{}{"status": "disabled"}
	}
	out := map[string]interface{}{"status": "healthy"}
	if pool, ok := p.(*pgxpool.Pool); ok {
		out["pool"] = GetPoolStats(pool)
	}
	if err := p.Ping(ctx); err != nil {
		out["status"] = "unhealthy"
		out["error"] = err.Error()
	}
	return out
}
