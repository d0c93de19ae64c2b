package httpServer

import (
	"time"

	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Global burst guard on top of the per-IP submission gate.
const (
	MaxRequests     = 100
	RateLimitWindow = 60 * time.Second
)

func (h *handler) RegisterRoutes() {
	h.logger.Info("Registering routes")

	m := newMetrics(h.namespace, h.subsystem)

	h.server.Use(m.metricsMiddleware)
	h.server.Use(h.securityHeadersMiddleware)

	h.server.Use(limiter.New(limiter.Config{
		Max:               MaxRequests,
		Expiration:        RateLimitWindow,
		LimitReached:      h.limitReached,
		LimiterMiddleware: limiter.SlidingWindow{},
	}))

	apiv1 := h.server.Group("/api/v1", h.loggerMiddleware)
	{
		report := apiv1.Group("/report")

		report.Post("", h.submitReport)
		report.Put("", h.uploadFile)
		report.Patch("", h.requireAdmin(), h.adminAction)
	}

	apiv1.Get("/health", h.health)
	apiv1.Get("/metrics", h.requireAdmin(), h.metrics)
}
