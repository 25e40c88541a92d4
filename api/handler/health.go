package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/html2pdf/models"
)

// Version is reported by the health endpoint. Overridable at link time.
var Version = "0.1.0"

// StatsProvider reports browser usage.
type StatsProvider interface {
	Stats() models.BrowserStats
}

// Health returns a handler for GET /health.
//
// Reports browser utilisation and degrades status when > 80% of the
// concurrency cap is in use.
func Health(sp StatsProvider, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := sp.Stats()

		status := "healthy"
		if stats.MaxConcurrent > 0 && stats.InFlight > int(float64(stats.MaxConcurrent)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
			Browser: stats,
		})
	}
}
