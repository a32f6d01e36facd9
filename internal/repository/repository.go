// Package repository implements all database queries for the campus events
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an email address is already taken.
var ErrDuplicateEmail = errors.New("email already in use")

// UserRepository handles persistence for user profiles.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	List(ctx context.Context, excludeID string) ([]model.User, error)
	MarkVerified(ctx context.Context, id string) error
}

// EventRepository handles persistence for events.
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	ListByCategory(ctx context.Context, category string) ([]model.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
	CategoryStats(ctx context.Context) ([]model.CategoryStats, error)
}

// RegistrationRepository handles persistence for event registrations and is
// the only writer of the event attendee counter.
type RegistrationRepository interface {
	Register(ctx context.Context, userID, eventID string) (*model.Registration, error)
	Unregister(ctx context.Context, userID, eventID string) error
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
}

// SessionRepository handles persistence for revocable sign-in sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// VerificationTokenRepository handles persistence for email verification tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, t *model.VerificationToken) error
	Get(ctx context.Context, token string) (*model.VerificationToken, error)
	Delete(ctx context.Context, token string) error
}
