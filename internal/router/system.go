package router

import (
	"github.com/deppfellow/event-scheduler/internal/handler"
	"github.com/deppfellow/event-scheduler/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the routes that are not part of the API:
// health, the docs UI and its static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.StaticFS("/static", static.FS)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
