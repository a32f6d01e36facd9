package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, description, date, time, location, category,
	organizer_id, organizer_name, organizer_email, max_attendees, current_attendees,
	image_url, created_at, updated_at`

// PostgresEventRepo persists events.
type PostgresEventRepo struct {
	db *pgxpool.Pool
}

// NewPostgresEventRepo constructs a PostgresEventRepo.
func NewPostgresEventRepo(db *pgxpool.Pool) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location,
		&e.Category, &e.OrganizerID, &e.OrganizerName, &e.OrganizerEmail,
		&e.MaxAttendees, &e.CurrentAttendees, &e.ImageURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresEventRepo) queryEvents(ctx context.Context, sql string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Create inserts a new event. The caller assigns the ID.
func (r *PostgresEventRepo) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, date, time, location, category,
		                     organizer_id, organizer_name, organizer_email,
		                     max_attendees, current_attendees, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, NOW(), NOW())`,
		e.ID, e.Title, e.Description, e.Date, e.Time, e.Location, e.Category,
		e.OrganizerID, e.OrganizerName, e.OrganizerEmail, e.MaxAttendees, e.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *PostgresEventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// List returns all events ordered by event date ascending.
func (r *PostgresEventRepo) List(ctx context.Context) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date ASC, time ASC`)
}

// ListByCategory returns events in one category, date ascending.
func (r *PostgresEventRepo) ListByCategory(ctx context.Context, category string) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE category = $1 ORDER BY date ASC, time ASC`,
		category)
}

// ListByOrganizer returns events created by one organizer, date ascending.
func (r *PostgresEventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = $1 ORDER BY date ASC, time ASC`,
		organizerID)
}

// Update writes the organizer-editable fields. The attendee counter is owned
// by the registration repository and deliberately not touched here.
func (r *PostgresEventRepo) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, date = $4, time = $5, location = $6,
		     category = $7, max_attendees = $8, image_url = $9, updated_at = NOW()
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Date, e.Time, e.Location,
		e.Category, e.MaxAttendees, e.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event; registrations cascade at the schema level.
func (r *PostgresEventRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryStats aggregates event and registration counts per category,
// busiest categories first.
func (r *PostgresEventRepo) CategoryStats(ctx context.Context) ([]model.CategoryStats, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.category, COUNT(DISTINCT e.id), COUNT(r.event_id)
		 FROM events e
		 LEFT JOIN registrations r ON r.event_id = e.id
		 GROUP BY e.category
		 ORDER BY COUNT(r.event_id) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	var stats []model.CategoryStats
	for rows.Next() {
		var s model.CategoryStats
		if err := rows.Scan(&s.Category, &s.Events, &s.Registrations); err != nil {
			return nil, fmt.Errorf("scan category stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

var _ EventRepository = (*PostgresEventRepo)(nil)
