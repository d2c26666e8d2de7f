package handler

import (
	"net/http"
	"time"

	"wallet-ledger-service/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles GET /health. Every dependency is pinged on each call;
// any failure degrades the overall status and the endpoint answers 503 so
// load balancers stop routing here.
func HealthCheck(version string, startedAt time.Time, checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status    string `json:"status"`
			LatencyMs int64  `json:"latency_ms"`
			Error     string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			start := time.Now()
			err := checker.Ping(c.Request.Context())
			latency := time.Since(start).Milliseconds()
			if err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", LatencyMs: latency, Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy", LatencyMs: latency}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":         status,
			"version":        version,
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
			"dependencies":   deps,
		})
	}
}
