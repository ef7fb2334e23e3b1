package handler

import (
	"github.com/deppfellow/event-scheduler/internal/server"
	"github.com/deppfellow/event-scheduler/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Event   *EventHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Event:   NewEventHandler(s, services.Events),
	}
}
