// Package router builds the Echo instance: global middleware, the error
// handler, system routes and the /event routes.
package router

import (
	"github.com/deppfellow/event-scheduler/internal/handler"
	"github.com/deppfellow/event-scheduler/internal/middleware"
	"github.com/deppfellow/event-scheduler/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Pre(middlewares.Global.RemoveTrailingSlash())

	// Order matters: the context logger needs the request id and the New
	// Relic transaction, and the request logger needs the context logger.
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
	)

	registerSystemRoutes(router, h)
	registerEventRoutes(router, h, middlewares)

	return router
}
