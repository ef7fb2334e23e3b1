package repository

import (
	"github.com/deppfellow/event-scheduler/internal/server"
)

// Repositories groups every repository so services receive one dependency.
type Repositories struct {
	Events *EventRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Events: NewEventRepository(s.DB, s.Config.Database.EventsCollection),
	}
}
