package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/repository"
	"github.com/spec-kit/account-security/internal/uow"
)

type userRepository struct{}

// NewUserRepository returns a repository over a Store's transactions.
func NewUserRepository() repository.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Get(_ context.Context, w *uow.Work, id uuid.UUID) (*user.User, error) {
	tx, err := txFrom(w)
	if err != nil {
		return nil, err
	}
	snap, ok := tx.staged.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u, err := user.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restore user %s: %w", id, err)
	}
	w.Attach(u)
	return u, nil
}

func (r *userRepository) Store(_ context.Context, w *uow.Work, u *user.User) error {
	tx, err := txFrom(w)
	if err != nil {
		return err
	}
	w.Track(u)
	snap := u.Snapshot()
	for id, other := range tx.staged.users {
		if id != snap.ID && other.Email == snap.Email {
			return user.EmailTakenViolation()
		}
	}
	tx.staged.users[snap.ID] = snap
	return nil
}

func (r *userRepository) FindIDByEmail(_ context.Context, w *uow.Work, email user.Email) (uuid.UUID, error) {
	tx, err := txFrom(w)
	if err != nil {
		return uuid.Nil, err
	}
	for id, snap := range tx.staged.users {
		if snap.Email == email.String() {
			return id, nil
		}
	}
	return uuid.Nil, user.ErrUserNotFound
}

func (r *userRepository) EmailExists(ctx context.Context, w *uow.Work, email user.Email) (bool, error) {
	_, err := r.FindIDByEmail(ctx, w, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, user.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Lock only checks existence; the store already serializes transactions.
func (r *userRepository) Lock(_ context.Context, w *uow.Work, id uuid.UUID) error {
	tx, err := txFrom(w)
	if err != nil {
		return err
	}
	if _, ok := tx.staged.users[id]; !ok {
		return user.ErrUserNotFound
	}
	return nil
}
