package router

import (
	"github.com/deppfellow/event-scheduler/internal/handler"
	"github.com/deppfellow/event-scheduler/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerEventRoutes mounts the event API under /event. Each route has a
// single terminal handler; the rate limiter applies to this group only.
func registerEventRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	events := r.Group("/event", m.RateLimit.Limit())

	events.POST("", h.Event.Create())
	events.GET("/:eventURI", h.Event.Get())
	events.PUT("/:eventURI", h.Event.Update())
}
