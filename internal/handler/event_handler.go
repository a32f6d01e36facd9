package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/campus-events/internal/middleware"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/Shivanand-hulikatti/campus-events/internal/service"
	"github.com/go-chi/chi/v5"
)

// EventService is the event surface the event handler depends on.
type EventService interface {
	CreateEvent(ctx context.Context, organizer *model.User, req model.CreateEventRequest) (*model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context, category, search string) ([]model.Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error)
	UpdateEvent(ctx context.Context, callerID, eventID string, req model.UpdateEventRequest) (*model.Event, error)
	DeleteEvent(ctx context.Context, callerID, eventID string) error
	CategoryStats(ctx context.Context) ([]model.CategoryStats, error)
}

// EventHandler holds the HTTP handlers for event browsing and organizer CRUD.
type EventHandler struct {
	svc EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	organizer := middleware.UserFromContext(r.Context())

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), organizer, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeData(w, http.StatusCreated, event)
}

// ListEvents handles GET /api/events?category=...&search=...&organizer=...
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		events []model.Event
		err    error
	)
	if organizer := q.Get("organizer"); organizer != "" {
		events, err = h.svc.ListEventsByOrganizer(r.Context(), organizer)
	} else {
		events, err = h.svc.ListEvents(r.Context(), q.Get("category"), q.Get("search"))
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeData(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	writeData(w, http.StatusOK, event)
}

// UpdateEvent handles PUT /api/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), caller.ID, chi.URLParam(r, "id"), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "only the organizer can update this event")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeData(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	err := h.svc.DeleteEvent(r.Context(), caller.ID, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "only the organizer can delete this event")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete event")
		}
		return
	}

	writeData(w, http.StatusOK, nil)
}

// CategoryStats handles GET /api/analytics/categories
func (h *EventHandler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.CategoryStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load analytics")
		return
	}
	if stats == nil {
		stats = []model.CategoryStats{}
	}
	writeData(w, http.StatusOK, stats)
}
