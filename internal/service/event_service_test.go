package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/realtime"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

// fakeEventRepo is an in-memory EventRepository.
type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]model.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]model.Event)}
}

func (f *fakeEventRepo) Create(_ context.Context, e *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[e.ID] = *e
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEventRepo) List(_ context.Context) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Event
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) ListByCategory(_ context.Context, category string) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Event
	for _, e := range f.events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByOrganizer(_ context.Context, organizerID string) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(_ context.Context, e *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; !ok {
		return repository.ErrNotFound
	}
	f.events[e.ID] = *e
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) CategoryStats(_ context.Context) ([]model.CategoryStats, error) {
	return nil, nil
}

var testOrganizer = &model.User{
	ID:          "org-1",
	Email:       "alice@campus.edu",
	DisplayName: "Alice",
}

func validCreateRequest() model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:        "Intro to Robotics",
		Description:  "Build your first robot.",
		Date:         "2026-10-01",
		Time:         "18:30",
		Location:     "Engineering Hall",
		Category:     "Technology",
		MaxAttendees: 50,
	}
}

func TestCreateEvent(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), realtime.NewHub())

	event, err := svc.CreateEvent(context.Background(), testOrganizer, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.ID == "" {
		t.Error("event has no id")
	}
	if event.OrganizerID != "org-1" || event.OrganizerName != "Alice" || event.OrganizerEmail != "alice@campus.edu" {
		t.Errorf("organizer fields wrong: %+v", event)
	}
	if event.CurrentAttendees != 0 {
		t.Errorf("new event attendee count = %d, want 0", event.CurrentAttendees)
	}
	if want := "https://picsum.photos/seed/Intro-to-Robotics/400/300.jpg"; event.ImageURL != want {
		t.Errorf("image url = %q, want %q", event.ImageURL, want)
	}
}

func TestCreateEventOrganizerNameFallsBackToEmail(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), realtime.NewHub())
	organizer := &model.User{ID: "org-2", Email: "bob@campus.edu"}

	event, err := svc.CreateEvent(context.Background(), organizer, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.OrganizerName != "bob" {
		t.Errorf("organizer name = %q, want %q", event.OrganizerName, "bob")
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), realtime.NewHub())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*model.CreateEventRequest)
	}{
		{"missing title", func(r *model.CreateEventRequest) { r.Title = "  " }},
		{"bad date", func(r *model.CreateEventRequest) { r.Date = "10/01/2026" }},
		{"bad time", func(r *model.CreateEventRequest) { r.Time = "6pm" }},
		{"zero capacity", func(r *model.CreateEventRequest) { r.MaxAttendees = 0 }},
		{"unknown category", func(r *model.CreateEventRequest) { r.Category = "Gaming" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			if _, err := svc.CreateEvent(ctx, testOrganizer, req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateEventSanitizesDescription(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), realtime.NewHub())

	req := validCreateRequest()
	req.Description = `Free pizza<script>alert("x")</script>`
	event, err := svc.CreateEvent(context.Background(), testOrganizer, req)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if strings.Contains(event.Description, "<script>") {
		t.Errorf("description not sanitized: %q", event.Description)
	}
	if !strings.Contains(event.Description, "Free pizza") {
		t.Errorf("sanitizer removed content: %q", event.Description)
	}
}

func TestListEventsCategoryAndSearch(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo, realtime.NewHub())
	ctx := context.Background()

	seed := []model.Event{
		{ID: "1", Title: "Robotics Workshop", Category: "Technology"},
		{ID: "2", Title: "Career Fair", Category: "Career", Location: "Main Gym"},
		{ID: "3", Title: "Movie Night", Category: "Entertainment", Description: "Popcorn provided"},
	}
	for i := range seed {
		repo.events[seed[i].ID] = seed[i]
	}

	all, err := svc.ListEvents(ctx, "all", "")
	if err != nil {
		t.Fatalf("ListEvents all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all events = %d, want 3", len(all))
	}

	tech, err := svc.ListEvents(ctx, "Technology", "")
	if err != nil {
		t.Fatalf("ListEvents Technology: %v", err)
	}
	if len(tech) != 1 || tech[0].ID != "1" {
		t.Errorf("technology events = %+v", tech)
	}

	if _, err := svc.ListEvents(ctx, "Gaming", ""); err == nil {
		t.Error("expected error for unknown category")
	}

	// Substring matches cover title, description and location.
	for term, wantID := range map[string]string{
		"robotics": "1",
		"popcorn":  "3",
		"main gym": "2",
	} {
		hits, err := svc.ListEvents(ctx, "", term)
		if err != nil {
			t.Fatalf("ListEvents search %q: %v", term, err)
		}
		if len(hits) != 1 || hits[0].ID != wantID {
			t.Errorf("search %q = %+v, want event %s", term, hits, wantID)
		}
	}

	// Near-miss titles still match through edit distance.
	hits, err := svc.ListEvents(ctx, "", "movie nigt")
	if err != nil {
		t.Fatalf("ListEvents fuzzy: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "3" {
		t.Errorf("fuzzy search = %+v, want event 3", hits)
	}
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo, realtime.NewHub())
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, testOrganizer, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if _, err := svc.UpdateEvent(ctx, "someone-else", event.ID, model.UpdateEventRequest{Title: "Hijacked"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("update by non-owner: err = %v, want ErrForbidden", err)
	}

	updated, err := svc.UpdateEvent(ctx, testOrganizer.ID, event.ID, model.UpdateEventRequest{Title: "Advanced Robotics"})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if updated.Title != "Advanced Robotics" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Location != event.Location {
		t.Errorf("untouched field changed: %q != %q", updated.Location, event.Location)
	}
}

func TestDeleteEventOwnerOnly(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo, realtime.NewHub())
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, testOrganizer, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if err := svc.DeleteEvent(ctx, "someone-else", event.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete by non-owner: err = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteEvent(ctx, testOrganizer.ID, event.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := svc.GetEvent(ctx, event.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("deleted event lookup: err = %v, want ErrNotFound", err)
	}
}
