package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, display_name, photo_url, role, bio, interests,
	provider, email_verified, password_hash, created_at, updated_at`

// PostgresUserRepo persists user profiles.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepo constructs a PostgresUserRepo.
func NewPostgresUserRepo(db *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.Role, &u.Bio,
		&u.Interests, &u.Provider, &u.EmailVerified, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user profile.
func (r *PostgresUserRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, display_name, photo_url, role, bio, interests,
		                    provider, email_verified, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`,
		u.ID, u.Email, u.DisplayName, u.PhotoURL, u.Role, u.Bio, u.Interests,
		u.Provider, u.EmailVerified, u.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID returns a single user or ErrNotFound.
func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail returns a single user by email or ErrNotFound.
func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update writes the mutable profile fields.
func (r *PostgresUserRepo) Update(ctx context.Context, u *model.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET display_name = $2, photo_url = $3, role = $4, bio = $5, interests = $6,
		     updated_at = NOW()
		 WHERE id = $1`,
		u.ID, u.DisplayName, u.PhotoURL, u.Role, u.Bio, u.Interests,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users except excludeID, newest first.
func (r *PostgresUserRepo) List(ctx context.Context, excludeID string) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY created_at DESC`,
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// MarkVerified flips the email_verified flag.
func (r *PostgresUserRepo) MarkVerified(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ UserRepository = (*PostgresUserRepo)(nil)
