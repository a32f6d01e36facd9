package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRegistrationRepo persists registrations and maintains the event
// attendee counter.
//
// Registration is a two-record change (registration row + counter field), so
// both writes happen inside a single transaction holding a row-level lock on
// the event (SELECT ... FOR UPDATE). Without the lock, two concurrent
// registrations can read the same counter value and both write back count+1,
// losing one update. With it, concurrent attempts serialise on the event row
// and the counter always equals the number of registration rows.
type PostgresRegistrationRepo struct {
	db *pgxpool.Pool
}

// NewPostgresRegistrationRepo constructs a PostgresRegistrationRepo.
func NewPostgresRegistrationRepo(db *pgxpool.Pool) *PostgresRegistrationRepo {
	return &PostgresRegistrationRepo{db: db}
}

// Register upserts the registration row for (userID, eventID) and increments
// the attendee counter only when a row was actually inserted. Registering an
// already-registered pair refreshes registered_at and leaves the counter
// alone, so the call is idempotent on both membership and count.
func (r *PostgresRegistrationRepo) Register(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the event row for the duration of the transaction.
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT TRUE FROM events WHERE id = $1 FOR UPDATE`, eventID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	// The composite primary key makes double registration a key collision,
	// not a transactional check. xmax = 0 distinguishes a fresh insert from
	// a conflict-update of an existing row.
	reg := &model.Registration{UserID: userID, EventID: eventID}
	var inserted bool
	err = tx.QueryRow(ctx,
		`INSERT INTO registrations (user_id, event_id, registered_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, event_id) DO UPDATE SET registered_at = NOW()
		 RETURNING registered_at, (xmax = 0)`,
		userID, eventID,
	).Scan(&reg.RegisteredAt, &inserted)
	if err != nil {
		return nil, fmt.Errorf("upsert registration: %w", err)
	}

	if inserted {
		if _, err = tx.Exec(ctx,
			`UPDATE events SET current_attendees = current_attendees + 1, updated_at = NOW()
			 WHERE id = $1`, eventID,
		); err != nil {
			return nil, fmt.Errorf("increment attendee count: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// Unregister deletes the registration row if present and decrements the
// counter only when a row was actually deleted, floored at zero. Deleting an
// absent registration is a no-op, not an error.
func (r *PostgresRegistrationRepo) Unregister(ctx context.Context, userID, eventID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the event row if it still exists. A missing event is fine: its
	// registrations were cascaded away and there is no counter to maintain.
	eventExists := true
	var locked bool
	err = tx.QueryRow(ctx,
		`SELECT TRUE FROM events WHERE id = $1 FOR UPDATE`, eventID,
	).Scan(&locked)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lock event row: %w", err)
		}
		eventExists = false
		err = nil
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}

	if eventExists && tag.RowsAffected() > 0 {
		if _, err = tx.Exec(ctx,
			`UPDATE events
			 SET current_attendees = GREATEST(current_attendees - 1, 0), updated_at = NOW()
			 WHERE id = $1`, eventID,
		); err != nil {
			return fmt.Errorf("decrement attendee count: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Exists is a point lookup on the composite key. Never mutates state.
func (r *PostgresRegistrationRepo) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

func (r *PostgresRegistrationRepo) list(ctx context.Context, sql string, arg string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.UserID, &reg.EventID, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// ListByUser returns all registrations for a user, store-native order.
func (r *PostgresRegistrationRepo) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT user_id, event_id, registered_at FROM registrations WHERE user_id = $1`,
		userID)
}

// ListByEvent returns all registrations for an event, store-native order.
func (r *PostgresRegistrationRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT user_id, event_id, registered_at FROM registrations WHERE event_id = $1`,
		eventID)
}

var _ RegistrationRepository = (*PostgresRegistrationRepo)(nil)
