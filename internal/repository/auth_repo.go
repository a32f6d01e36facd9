package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSessionRepo persists revocable sign-in sessions.
type PostgresSessionRepo struct {
	db *pgxpool.Pool
}

// NewPostgresSessionRepo constructs a PostgresSessionRepo.
func NewPostgresSessionRepo(db *pgxpool.Pool) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create inserts a session row.
func (r *PostgresSessionRepo) Create(ctx context.Context, s *model.Session) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, NOW())`,
		s.ID, s.UserID, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID returns a session or ErrNotFound.
func (r *PostgresSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Delete removes a session. Deleting an absent session is a no-op.
func (r *PostgresSessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

var _ SessionRepository = (*PostgresSessionRepo)(nil)

// PostgresVerificationTokenRepo persists email verification tokens.
type PostgresVerificationTokenRepo struct {
	db *pgxpool.Pool
}

// NewPostgresVerificationTokenRepo constructs a PostgresVerificationTokenRepo.
func NewPostgresVerificationTokenRepo(db *pgxpool.Pool) *PostgresVerificationTokenRepo {
	return &PostgresVerificationTokenRepo{db: db}
}

// Create inserts a verification token.
func (r *PostgresVerificationTokenRepo) Create(ctx context.Context, t *model.VerificationToken) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO verification_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		t.Token, t.UserID, t.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification token: %w", err)
	}
	return nil
}

// Get returns a verification token or ErrNotFound.
func (r *PostgresVerificationTokenRepo) Get(ctx context.Context, token string) (*model.VerificationToken, error) {
	var t model.VerificationToken
	err := r.db.QueryRow(ctx,
		`SELECT token, user_id, expires_at FROM verification_tokens WHERE token = $1`, token,
	).Scan(&t.Token, &t.UserID, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get verification token: %w", err)
	}
	return &t, nil
}

// Delete removes a verification token.
func (r *PostgresVerificationTokenRepo) Delete(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM verification_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete verification token: %w", err)
	}
	return nil
}

var _ VerificationTokenRepository = (*PostgresVerificationTokenRepo)(nil)
