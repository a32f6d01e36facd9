// Package model defines the core domain types for the campus events system.
package model

import (
	"strings"
	"time"
)

// Categories lists the event categories accepted by the API.
var Categories = []string{"Technology", "Entertainment", "Career", "Sports", "Academic", "Social"}

// ValidCategory reports whether c is one of the known event categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// User represents a campus member's profile. The ID is assigned by the
// identity layer at first sign-in and never changes.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	Role          string    `json:"role,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Interests     []string  `json:"interests,omitempty"`
	Provider      string    `json:"provider"`
	EmailVerified bool      `json:"email_verified"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Event represents a campus event created by an organizer.
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             string    `json:"date"` // YYYY-MM-DD
	Time             string    `json:"time"` // HH:MM
	Location         string    `json:"location"`
	Category         string    `json:"category"`
	OrganizerID      string    `json:"organizer_id"`
	OrganizerName    string    `json:"organizer_name"`
	OrganizerEmail   string    `json:"organizer_email"`
	MaxAttendees     int       `json:"max_attendees"`
	CurrentAttendees int       `json:"current_attendees"`
	ImageURL         string    `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Remaining returns the number of open seats, clamped at zero. The counter is
// display data; registration is not gated on capacity.
func (e *Event) Remaining() int {
	if r := e.MaxAttendees - e.CurrentAttendees; r > 0 {
		return r
	}
	return 0
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return e.CurrentAttendees >= e.MaxAttendees
}

// Registration represents a user's registration for an event. The pair
// (UserID, EventID) is the identity: at most one active registration per pair.
type Registration struct {
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Key returns the deterministic document key "{userId}_{eventId}" exposed by
// the API.
func (r *Registration) Key() string {
	return RegistrationKey(r.UserID, r.EventID)
}

// RegistrationKey builds the composite registration key for a pair.
func RegistrationKey(userID, eventID string) string {
	return userID + "_" + eventID
}

// Session is a revocable sign-in. The ID doubles as the JWT's jti claim;
// deleting the row signs the token out.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// VerificationToken is a single-use email verification token.
type VerificationToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// CategoryStats aggregates event and registration counts for one category.
type CategoryStats struct {
	Category      string `json:"category"`
	Events        int    `json:"events"`
	Registrations int    `json:"registrations"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required,datetime=15:04"`
	Location     string `json:"location" validate:"required,max=200"`
	Category     string `json:"category" validate:"required"`
	MaxAttendees int    `json:"max_attendees" validate:"required,gt=0,lte=100000"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
}

// UpdateEventRequest is the payload for updating an event. Zero values leave
// the stored field untouched.
type UpdateEventRequest struct {
	Title        string `json:"title" validate:"omitempty,max=200"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time         string `json:"time" validate:"omitempty,datetime=15:04"`
	Location     string `json:"location" validate:"omitempty,max=200"`
	Category     string `json:"category" validate:"omitempty"`
	MaxAttendees int    `json:"max_attendees" validate:"omitempty,gt=0,lte=100000"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
}

// UpdateProfileRequest is the payload for updating the caller's own profile.
type UpdateProfileRequest struct {
	DisplayName string   `json:"display_name" validate:"omitempty,max=100"`
	PhotoURL    string   `json:"photo_url" validate:"omitempty,url"`
	Role        string   `json:"role" validate:"omitempty,max=100"`
	Bio         string   `json:"bio" validate:"omitempty,max=1000"`
	Interests   []string `json:"interests" validate:"omitempty,dive,max=50"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// DefaultEventImage derives a deterministic placeholder image URL from the
// event title, matching what organizers see before uploading their own.
func DefaultEventImage(title string) string {
	seed := strings.ReplaceAll(strings.TrimSpace(title), " ", "-")
	return "https://picsum.photos/seed/" + seed + "/400/300.jpg"
}
