package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mediapoint/roster/internal/pkg/httputil"
	"github.com/mediapoint/roster/internal/storage"
)

// HealthStatus represents the overall health of the service.
type HealthStatus struct {
	Status string                    `json:"status"` // "ok" or "degraded"
	Uptime string                    `json:"uptime"`
	Checks map[string]ComponentCheck `json:"checks,omitempty"`
}

// ComponentCheck represents the health of a single dependency.
type ComponentCheck struct {
	Status  string `json:"status"` // "up" or "down"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthChecker probes the configured dependencies. Nil dependencies are
// left out of the report.
type HealthChecker struct {
	db          *sql.DB
	redisClient *redis.Client
	blobs       storage.BlobStore
	startTime   time.Time
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client, blobs storage.BlobStore) *HealthChecker {
	return &HealthChecker{
		db:          db,
		redisClient: redisClient,
		blobs:       blobs,
		startTime:   time.Now(),
	}
}

// HandleHealth reports "ok" when every configured dependency answers.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]ComponentCheck)
	if hc.db != nil {
		checks["database"] = probe(func() error { return hc.db.PingContext(ctx) })
	}
	if hc.redisClient != nil {
		checks["redis"] = probe(func() error { return hc.redisClient.Ping(ctx).Err() })
	}
	if hc.blobs != nil {
		checks["storage"] = probe(func() error {
			_, err := hc.blobs.Exists(ctx, ".health")
			return err
		})
	}

	status := HealthStatus{
		Status: "ok",
		Uptime: time.Since(hc.startTime).Round(time.Second).String(),
		Checks: checks,
	}
	for _, c := range checks {
		if c.Status != "up" {
			status.Status = "degraded"
		}
	}

	// Always 200; the body carries the verdict.
	httputil.OK(w, status)
}

func probe(fn func() error) ComponentCheck {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		return ComponentCheck{
			Status:  "down",
			Latency: latency.String(),
			Message: fmt.Sprintf("check failed: %v", err),
		}
	}
	return ComponentCheck{Status: "up", Latency: latency.String()}
}
