package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/uow"
)

const usersEmailConstraint = "users_email_key"

type userRepository struct{}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Get(ctx context.Context, w *uow.Work, id uuid.UUID) (*user.User, error) {
	const query = `
        SELECT id, username, email, password_hash, created_at, updated_at, logged_at, suspended_at, deleted_at
        FROM users WHERE id=$1`

	tx, err := pgTx(w)
	if err != nil {
		return nil, err
	}
	var snap user.Snapshot
	if err := tx.QueryRow(ctx, query, id).Scan(
		&snap.ID,
		&snap.Username,
		&snap.Email,
		&snap.PasswordHash,
		&snap.CreatedAt,
		&snap.UpdatedAt,
		&snap.LoggedAt,
		&snap.SuspendedAt,
		&snap.DeletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	u, err := user.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restore user %s: %w", id, err)
	}
	w.Attach(u)
	return u, nil
}

func (r *userRepository) Store(ctx context.Context, w *uow.Work, u *user.User) error {
	const query = `
        INSERT INTO users (id, username, email, password_hash, created_at, updated_at, logged_at, suspended_at, deleted_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (id) DO UPDATE SET
            username=EXCLUDED.username,
            email=EXCLUDED.email,
            password_hash=EXCLUDED.password_hash,
            updated_at=EXCLUDED.updated_at,
            logged_at=EXCLUDED.logged_at,
            suspended_at=EXCLUDED.suspended_at,
            deleted_at=EXCLUDED.deleted_at`

	tx, err := pgTx(w)
	if err != nil {
		return err
	}
	w.Track(u)
	snap := u.Snapshot()
	if _, err := tx.Exec(ctx, query,
		snap.ID,
		snap.Username,
		snap.Email,
		snap.PasswordHash,
		snap.CreatedAt,
		snap.UpdatedAt,
		snap.LoggedAt,
		snap.SuspendedAt,
		snap.DeletedAt,
	); err != nil {
		if isUniqueViolation(err, usersEmailConstraint) {
			return user.EmailTakenViolation()
		}
		return err
	}
	return nil
}

func (r *userRepository) FindIDByEmail(ctx context.Context, w *uow.Work, email user.Email) (uuid.UUID, error) {
	const query = `SELECT id FROM users WHERE email=$1`

	tx, err := pgTx(w)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, email.String()).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, user.ErrUserNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *userRepository) EmailExists(ctx context.Context, w *uow.Work, email user.Email) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`

	tx, err := pgTx(w)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, query, email.String()).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *userRepository) Lock(ctx context.Context, w *uow.Work, id uuid.UUID) error {
	const query = `SELECT id FROM users WHERE id=$1 FOR UPDATE`

	tx, err := pgTx(w)
	if err != nil {
		return err
	}
	var locked uuid.UUID
	if err := tx.QueryRow(ctx, query, id).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrUserNotFound
		}
		return err
	}
	return nil
}
