package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cartforge/cartforge/internal/domain"
	"github.com/cartforge/cartforge/internal/domain/user"
)

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	membershipsJSON, err := json.Marshal(u.Memberships)
	if err != nil {
		return fmt.Errorf("marshal memberships: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, roles, memberships, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.Name, u.PasswordHash, pgTextArray(u.Roles), membershipsJSON, u.Enabled, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user: email already registered: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, roles, memberships, enabled, created_at, updated_at
		FROM users WHERE id::text = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user %s", id)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, roles, memberships, enabled, created_at, updated_at
		FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user by email %s", email)
	}
	return u, nil
}

func scanUser(row scannable) (*user.User, error) {
	var (
		u               user.User
		membershipsJSON []byte
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Roles, &membershipsJSON, &u.Enabled, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if len(membershipsJSON) > 0 {
		if err := json.Unmarshal(membershipsJSON, &u.Memberships); err != nil {
			return nil, fmt.Errorf("unmarshal user %s memberships: %w", u.ID, err)
		}
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
