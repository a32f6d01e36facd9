package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/campus-events/internal/middleware"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/realtime"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/go-chi/chi/v5"
)

// RegistrationService is the registration surface the handler depends on.
type RegistrationService interface {
	RegisterForEvent(ctx context.Context, userID, eventID string) (*model.Registration, error)
	UnregisterFromEvent(ctx context.Context, userID, eventID string) error
	IsUserRegistered(ctx context.Context, userID, eventID string) (bool, error)
	GetUserRegistrations(ctx context.Context, userID string) ([]model.Registration, error)
	GetEventRegistrations(ctx context.Context, eventID string) ([]model.Registration, error)
	SubscribeToUserRegistrations(userID string, callback func([]model.Registration)) *realtime.Subscription
}

// EventSubscriber establishes live queries over events.
type EventSubscriber interface {
	SubscribeToEvents(callback func([]model.Event)) *realtime.Subscription
	SubscribeToOrganizerEvents(organizerID string, callback func([]model.Event)) *realtime.Subscription
}

// SubscriptionRecorder tracks open live queries for metrics.
type SubscriptionRecorder interface {
	SubscriptionOpened()
	SubscriptionClosed()
}

// RegistrationHandler holds the HTTP handlers for registrations and the
// live-query streams.
type RegistrationHandler struct {
	svc      RegistrationService
	events   EventSubscriber
	recorder SubscriptionRecorder
}

// NewRegistrationHandler constructs a RegistrationHandler. recorder may be nil.
func NewRegistrationHandler(svc RegistrationService, events EventSubscriber, recorder SubscriptionRecorder) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, events: events, recorder: recorder}
}

type membershipResponse struct {
	Success      bool `json:"success"`
	IsRegistered bool `json:"is_registered"`
}

// Register handles POST /api/events/{id}/register
// Registers the authenticated user for the event.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	reg, err := h.svc.RegisterForEvent(r.Context(), user.ID, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeData(w, http.StatusCreated, reg)
}

// Unregister handles POST /api/events/{id}/unregister
// Removing an absent registration succeeds.
func (h *RegistrationHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	if err := h.svc.UnregisterFromEvent(r.Context(), user.ID, eventID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeData(w, http.StatusOK, nil)
}

// IsRegistered handles GET /api/events/{id}/registered
func (h *RegistrationHandler) IsRegistered(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	registered, err := h.svc.IsUserRegistered(r.Context(), user.ID, eventID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, membershipResponse{Success: true, IsRegistered: registered})
}

// ListEventRegistrations handles GET /api/events/{id}/registrations
func (h *RegistrationHandler) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.GetEventRegistrations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if regs == nil {
		regs = []model.Registration{}
	}
	writeData(w, http.StatusOK, regs)
}

// ListMyRegistrations handles GET /api/registrations
func (h *RegistrationHandler) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	regs, err := h.svc.GetUserRegistrations(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if regs == nil {
		regs = []model.Registration{}
	}
	writeData(w, http.StatusOK, regs)
}

// StreamMyRegistrations handles GET /api/registrations/stream
// Server-sent events: one snapshot of the caller's registrations per change.
func (h *RegistrationHandler) StreamMyRegistrations(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	streamSnapshots(w, r, h.recorder, func(callback func([]model.Registration)) *realtime.Subscription {
		return h.svc.SubscribeToUserRegistrations(user.ID, callback)
	})
}

// StreamEvents handles GET /api/events/stream
// Server-sent events: one snapshot of all events per change. With ?mine=1 the
// stream narrows to events the caller organizes.
func (h *RegistrationHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("mine") != "" {
		user := middleware.UserFromContext(r.Context())
		streamSnapshots(w, r, h.recorder, func(callback func([]model.Event)) *realtime.Subscription {
			return h.events.SubscribeToOrganizerEvents(user.ID, callback)
		})
		return
	}
	streamSnapshots(w, r, h.recorder, h.events.SubscribeToEvents)
}

// streamSnapshots pumps live query snapshots to the client as SSE until the
// client disconnects. The subscription handle is always cancelled on the way
// out; the callback never blocks, stale snapshots are replaced by newer ones.
func streamSnapshots[T any](w http.ResponseWriter, r *http.Request, recorder SubscriptionRecorder, subscribe func(func(T)) *realtime.Subscription) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	snapshots := make(chan T, 1)
	sub := subscribe(func(snapshot T) {
		// Latest-wins: drop the queued snapshot if the client is slow.
		for {
			select {
			case snapshots <- snapshot:
				return
			default:
				select {
				case <-snapshots:
				default:
				}
			}
		}
	})
	defer sub.Cancel()

	if recorder != nil {
		recorder.SubscriptionOpened()
		defer recorder.SubscriptionClosed()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot := <-snapshots:
			payload, err := json.Marshal(snapshot)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
