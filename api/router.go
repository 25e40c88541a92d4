package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/html2pdf/api/handler"
	"github.com/use-agent/html2pdf/api/middleware"
	"github.com/use-agent/html2pdf/config"
	"github.com/use-agent/html2pdf/metrics"
)

// Service is what the router needs from the conversion layer.
// Implemented by *converter.Converter.
type Service interface {
	handler.Converter
	handler.StatsProvider
}

// NewRouter creates a configured Gin engine with all routes and middleware.
// collector may be nil, which disables the metrics middleware and endpoint.
//
// Middleware chain:
//
//	Global:   Recovery → Logger → Metrics
//	Convert:  RateLimit
//
// Health and metrics are outside the rate limit so probes and scrapers always work.
func NewRouter(svc Service, cfg *config.Config, collector *metrics.Collector, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	if collector != nil {
		r.Use(middleware.Metrics(collector))
	}

	r.GET("/health", handler.Health(svc, startTime))
	if collector != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}

	r.POST("/convert", middleware.RateLimit(cfg.RateLimit), handler.Convert(svc))

	return r
}
