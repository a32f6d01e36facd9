// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/realtime"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

// ErrForbidden is returned when the caller does not own the resource.
var ErrForbidden = errors.New("forbidden")

// RegistrationRecorder receives registration activity for metrics.
type RegistrationRecorder interface {
	RecordRegistration()
	RecordUnregistration()
}

// RegistrationService mediates the user<->event registration relationship and
// its derived attendee count. All counter maintenance goes through here.
type RegistrationService struct {
	registrations repository.RegistrationRepository
	hub           *realtime.Hub
	recorder      RegistrationRecorder
}

// NewRegistrationService constructs a RegistrationService. recorder may be nil.
func NewRegistrationService(
	registrations repository.RegistrationRepository,
	hub *realtime.Hub,
	recorder RegistrationRecorder,
) *RegistrationService {
	return &RegistrationService{registrations: registrations, hub: hub, recorder: recorder}
}

// RegisterForEvent registers a user for an event. Registering an
// already-registered pair refreshes the registration timestamp only; it never
// duplicates the record or re-increments the counter.
func (s *RegistrationService) RegisterForEvent(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}

	reg, err := s.registrations.Register(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("register for event: %w", err)
	}
	if s.recorder != nil {
		s.recorder.RecordRegistration()
	}
	return reg, nil
}

// UnregisterFromEvent removes a user's registration. Unregistering a pair
// that was never registered succeeds without error.
func (s *RegistrationService) UnregisterFromEvent(ctx context.Context, userID, eventID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	if err := s.registrations.Unregister(ctx, userID, eventID); err != nil {
		return fmt.Errorf("unregister from event: %w", err)
	}
	if s.recorder != nil {
		s.recorder.RecordUnregistration()
	}
	return nil
}

// IsUserRegistered reports membership for a (user, event) pair.
func (s *RegistrationService) IsUserRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" || eventID == "" {
		return false, fmt.Errorf("user id and event id are required")
	}
	return s.registrations.Exists(ctx, userID, eventID)
}

// GetUserRegistrations returns all registrations for a user. Callers must not
// assume an order.
func (s *RegistrationService) GetUserRegistrations(ctx context.Context, userID string) ([]model.Registration, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.registrations.ListByUser(ctx, userID)
}

// GetEventRegistrations returns all registrations for an event. Callers must
// not assume an order.
func (s *RegistrationService) GetEventRegistrations(ctx context.Context, eventID string) ([]model.Registration, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}
	return s.registrations.ListByEvent(ctx, eventID)
}

// SubscribeToUserRegistrations establishes a live query over a user's
// registrations. The callback receives the full current set on every change.
// The caller owns the returned handle and must Cancel it on teardown.
func (s *RegistrationService) SubscribeToUserRegistrations(userID string, callback func([]model.Registration)) *realtime.Subscription {
	return realtime.Subscribe(s.hub, "registrations",
		func(ctx context.Context) ([]model.Registration, error) {
			return s.registrations.ListByUser(ctx, userID)
		},
		callback,
	)
}
