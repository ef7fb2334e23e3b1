package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/event-scheduler/internal/model"
	"github.com/deppfellow/event-scheduler/internal/server"
	"github.com/deppfellow/event-scheduler/internal/service"
	"github.com/deppfellow/event-scheduler/internal/validation"
	"github.com/labstack/echo/v4"
)

// EventService is what EventHandler delegates to once a request is valid.
type EventService interface {
	CreateEvent(ctx context.Context, in service.CreateEventInput) (*model.Event, error)
	GetEvent(ctx context.Context, eventURI string) (*model.Event, error)
	UpdateEventTimes(ctx context.Context, in service.UpdateTimesInput) (*model.Event, error)
}

type CreateEventRequest struct {
	Days      []string `json:"days" validate:"required"`
	StartTime string   `json:"startTime" validate:"required,iso8601"`
	EndTime   string   `json:"endTime" validate:"required,iso8601"`
}

// Validate checks the days list and rejects an end time that sorts before
// the start time. The comparison is on the raw strings.
func (r *CreateEventRequest) Validate() error {
	return validation.Struct(r,
		validation.Field("days", r.Days, validation.DaysRule),
		validation.Field("startTime", validation.TimeWindow{Start: r.StartTime, End: r.EndTime}, validation.TimeWindowRule),
	)
}

type GetEventRequest struct {
	EventURI string `param:"eventURI" json:"-" validate:"required,objectid"`
}

func (r *GetEventRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateEventRequest struct {
	EventURI string   `param:"eventURI" json:"-" validate:"required,objectid"`
	Username string   `json:"username" validate:"required,alphanum"`
	Times    []string `json:"times" validate:"required"`
}

func (r *UpdateEventRequest) Validate() error {
	return validation.Struct(r,
		validation.Field("times", r.Times, validation.TimesRule),
	)
}

type EventHandler struct {
	Handler
	events EventService
}

func NewEventHandler(s *server.Server, events EventService) *EventHandler {
	return &EventHandler{
		Handler: NewHandler(s),
		events:  events,
	}
}

func (h *EventHandler) CreateEvent(c echo.Context, req *CreateEventRequest) (*model.Event, error) {
	return h.events.CreateEvent(c.Request().Context(), service.CreateEventInput{
		Days:      req.Days,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
}

func (h *EventHandler) GetEvent(c echo.Context, req *GetEventRequest) (*model.Event, error) {
	return h.events.GetEvent(c.Request().Context(), req.EventURI)
}

func (h *EventHandler) UpdateEventTimes(c echo.Context, req *UpdateEventRequest) (*model.Event, error) {
	return h.events.UpdateEventTimes(c.Request().Context(), service.UpdateTimesInput{
		EventURI: req.EventURI,
		Username: req.Username,
		Times:    req.Times,
	})
}

// Create, Get and Update wrap the typed endpoints for the router.
func (h *EventHandler) Create() echo.HandlerFunc {
	return Handle(h.Handler, h.CreateEvent, http.StatusCreated, &CreateEventRequest{})
}

func (h *EventHandler) Get() echo.HandlerFunc {
	return Handle(h.Handler, h.GetEvent, http.StatusOK, &GetEventRequest{})
}

func (h *EventHandler) Update() echo.HandlerFunc {
	return Handle(h.Handler, h.UpdateEventTimes, http.StatusOK, &UpdateEventRequest{})
}
