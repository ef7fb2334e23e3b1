package service

import (
	"context"
	"time"

	"github.com/deppfellow/event-scheduler/internal/dberr"
	"github.com/deppfellow/event-scheduler/internal/lib/job"
	"github.com/deppfellow/event-scheduler/internal/model"
	"github.com/deppfellow/event-scheduler/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// EventStore is the persistence EventService needs. *repository.EventRepository
// implements it against MongoDB.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Event, error)
	UpsertSubmission(ctx context.Context, id primitive.ObjectID, sub model.Submission) (*model.Event, error)
}

// Notifier announces event changes to live subscribers.
type Notifier interface {
	EnqueueEventChanged(ctx context.Context, payload job.EventChangedPayload) error
}

type CreateEventInput struct {
	Days      []string
	StartTime string
	EndTime   string
}

type UpdateTimesInput struct {
	EventURI string
	Username string
	Times    []string
}

// notifyTimeout bounds each enqueue so an unreachable Redis cannot stall
// the response.
const notifyTimeout = 2 * time.Second

type EventService struct {
	store         EventStore
	notifier      Notifier
	notifyTimeout time.Duration
}

// NewEventService builds the service. notifier may be nil, which disables
// change notifications.
func NewEventService(store EventStore, notifier Notifier) *EventService {
	return &EventService{store: store, notifier: notifier, notifyTimeout: notifyTimeout}
}

// CreateEvent stores a new event. The returned event carries its generated URI.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	now := repository.Now()

	event, err := s.store.Create(ctx, &model.Event{
		Days:        in.Days,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Submissions: []model.Submission{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create event")
	}

	zerolog.Ctx(ctx).Info().
		Str("event_uri", event.URI()).
		Int("days", len(event.Days)).
		Msg("event created")

	s.notify(ctx, job.EventChangedPayload{
		EventURI: event.URI(),
		Type:     job.NotificationEventCreated,
	})

	return event, nil
}

// GetEvent fetches an event by URI. Every call reads the store.
func (s *EventService) GetEvent(ctx context.Context, eventURI string) (*model.Event, error) {
	id, err := parseURI(eventURI)
	if err != nil {
		return nil, err
	}

	event, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get event %s", eventURI)
	}

	return event, nil
}

// UpdateEventTimes replaces the participant's selected times on the event,
// adding the participant if they have not answered before.
func (s *EventService) UpdateEventTimes(ctx context.Context, in UpdateTimesInput) (*model.Event, error) {
	id, err := parseURI(in.EventURI)
	if err != nil {
		return nil, err
	}

	times := in.Times
	if times == nil {
		times = []string{}
	}

	event, err := s.store.UpsertSubmission(ctx, id, model.Submission{
		Username:  in.Username,
		Times:     times,
		UpdatedAt: repository.Now(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "update times of %s on event %s", in.Username, in.EventURI)
	}

	zerolog.Ctx(ctx).Info().
		Str("event_uri", in.EventURI).
		Str("username", in.Username).
		Int("times", len(times)).
		Msg("event times updated")

	s.notify(ctx, job.EventChangedPayload{
		EventURI: in.EventURI,
		Type:     job.NotificationEventUpdated,
		Username: in.Username,
	})

	return event, nil
}

// notify enqueues a change notification. Failures are logged only; the
// change itself is already stored.
func (s *EventService) notify(ctx context.Context, payload job.EventChangedPayload) {
	if s.notifier == nil {
		return
	}

	enqueueCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	if err := s.notifier.EnqueueEventChanged(enqueueCtx, payload); err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("event_uri", payload.EventURI).
			Str("type", payload.Type).
			Msg("failed to enqueue event notification")
	}
}

// parseURI converts an event URI into its ObjectID. Handlers validate the
// format first, so a failure here is reported as a missing event.
func parseURI(eventURI string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(eventURI)
	if err != nil {
		return primitive.NilObjectID, dberr.Wrap(mongo.ErrNoDocuments, "events", "parse")
	}
	return id, nil
}
