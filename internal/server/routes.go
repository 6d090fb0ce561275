package server

import (
	"net/http"
	"time"

	"github.com/dccarter/suil-archive-sub003/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// AdminRouter serves health and metrics for the echo server.
func AdminRouter(node string, echo *Echo, logger zerolog.Logger) *gin.Engine {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware(node))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"node":        node,
			"mode":        echo.Framer.Mode(),
			"uptime":      time.Since(echo.Appeared).Round(time.Second).String(),
			"connections": echo.Connections(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
