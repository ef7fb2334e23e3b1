package service

import (
	"github.com/deppfellow/event-scheduler/internal/lib/job"
	"github.com/deppfellow/event-scheduler/internal/repository"
	"github.com/deppfellow/event-scheduler/internal/server"
)

type Services struct {
	Events *EventService
	Job    *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var notifier Notifier
	if s.Job != nil {
		notifier = s.Job
	}

	return &Services{
		Events: NewEventService(repos.Events, notifier),
		Job:    s.Job,
	}, nil
}
