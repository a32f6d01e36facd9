package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/realtime"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hbollon/go-edlib"
	"github.com/microcosm-cc/bluemonday"
)

// fuzzyThreshold is the minimum edlib similarity for a non-substring search hit.
const fuzzyThreshold = 0.7

// EventService orchestrates event browsing and organizer CRUD. The attendee
// counter is read here but only ever written by the RegistrationService.
type EventService struct {
	events    repository.EventRepository
	hub       *realtime.Hub
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

// NewEventService constructs an EventService.
func NewEventService(events repository.EventRepository, hub *realtime.Hub) *EventService {
	return &EventService{
		events:    events,
		hub:       hub,
		validate:  validator.New(),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// CreateEvent validates the request and creates an event owned by the
// organizer. The description is sanitized; a placeholder image is derived
// from the title when none is given.
func (s *EventService) CreateEvent(ctx context.Context, organizer *model.User, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	if !model.ValidCategory(req.Category) {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = model.DefaultEventImage(req.Title)
	}

	organizerName := organizer.DisplayName
	if organizerName == "" {
		organizerName, _, _ = strings.Cut(organizer.Email, "@")
	}

	event := &model.Event{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    s.sanitizer.Sanitize(req.Description),
		Date:           req.Date,
		Time:           req.Time,
		Location:       req.Location,
		Category:       req.Category,
		OrganizerID:    organizer.ID,
		OrganizerName:  organizerName,
		OrganizerEmail: organizer.Email,
		MaxAttendees:   req.MaxAttendees,
		ImageURL:       imageURL,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return s.events.GetByID(ctx, event.ID)
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("event id is required")
	}
	return s.events.GetByID(ctx, id)
}

// ListEvents returns events filtered by optional category and search term,
// soonest first.
func (s *EventService) ListEvents(ctx context.Context, category, search string) ([]model.Event, error) {
	var (
		events []model.Event
		err    error
	)
	if category != "" && category != "all" {
		if !model.ValidCategory(category) {
			return nil, fmt.Errorf("unknown category %q", category)
		}
		events, err = s.events.ListByCategory(ctx, category)
	} else {
		events, err = s.events.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	if search == "" {
		return events, nil
	}
	return fuzzyFilterEvents(events, search), nil
}

// ListEventsByOrganizer returns the events created by one organizer.
func (s *EventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	if organizerID == "" {
		return nil, fmt.Errorf("organizer id is required")
	}
	return s.events.ListByOrganizer(ctx, organizerID)
}

// UpdateEvent applies the organizer-editable fields. Only the organizer may
// update their event.
func (s *EventService) UpdateEvent(ctx context.Context, callerID, eventID string, req model.UpdateEventRequest) (*model.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, ErrForbidden
	}

	if req.Title != "" {
		event.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		event.Description = s.sanitizer.Sanitize(req.Description)
	}
	if req.Date != "" {
		event.Date = req.Date
	}
	if req.Time != "" {
		event.Time = req.Time
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if req.Category != "" {
		if !model.ValidCategory(req.Category) {
			return nil, fmt.Errorf("unknown category %q", req.Category)
		}
		event.Category = req.Category
	}
	if req.MaxAttendees > 0 {
		event.MaxAttendees = req.MaxAttendees
	}
	if req.ImageURL != "" {
		event.ImageURL = req.ImageURL
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.events.GetByID(ctx, eventID)
}

// DeleteEvent removes an event and, via the schema, its registrations. Only
// the organizer may delete their event.
func (s *EventService) DeleteEvent(ctx context.Context, callerID, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != callerID {
		return ErrForbidden
	}
	return s.events.Delete(ctx, eventID)
}

// CategoryStats returns per-category event and registration counts.
func (s *EventService) CategoryStats(ctx context.Context) ([]model.CategoryStats, error) {
	return s.events.CategoryStats(ctx)
}

// SubscribeToEvents establishes a live query over all events. The caller owns
// the returned handle and must Cancel it on teardown.
func (s *EventService) SubscribeToEvents(callback func([]model.Event)) *realtime.Subscription {
	return realtime.Subscribe(s.hub, "events",
		func(ctx context.Context) ([]model.Event, error) {
			return s.events.List(ctx)
		},
		callback,
	)
}

// SubscribeToOrganizerEvents establishes a live query over one organizer's
// events.
func (s *EventService) SubscribeToOrganizerEvents(organizerID string, callback func([]model.Event)) *realtime.Subscription {
	return realtime.Subscribe(s.hub, "events",
		func(ctx context.Context) ([]model.Event, error) {
			return s.events.ListByOrganizer(ctx, organizerID)
		},
		callback,
	)
}

// fuzzyFilterEvents keeps events whose title, description or location contain
// the term, plus near-miss titles ranked by edit-distance similarity.
func fuzzyFilterEvents(events []model.Event, term string) []model.Event {
	term = strings.ToLower(strings.TrimSpace(term))
	type scored struct {
		event model.Event
		score float32
	}
	var hits []scored
	for _, e := range events {
		title := strings.ToLower(e.Title)
		if strings.Contains(title, term) ||
			strings.Contains(strings.ToLower(e.Description), term) ||
			strings.Contains(strings.ToLower(e.Location), term) {
			hits = append(hits, scored{event: e, score: 1})
			continue
		}
		similarity, err := edlib.StringsSimilarity(title, term, edlib.Levenshtein)
		if err == nil && similarity >= fuzzyThreshold {
			hits = append(hits, scored{event: e, score: similarity})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	results := make([]model.Event, len(hits))
	for i, h := range hits {
		results[i] = h.event
	}
	return results
}
