package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/repository"
	"github.com/spec-kit/account-security/internal/uow"
)

type securityRepository struct{}

// NewSecurityRepository returns a repository over a Store's transactions.
func NewSecurityRepository() repository.SecurityRepository {
	return &securityRepository{}
}

func (r *securityRepository) restore(w *uow.Work, snap security.ChallengeSnapshot) (*security.Challenge, error) {
	c, err := security.RestoreChallenge(snap)
	if err != nil {
		return nil, fmt.Errorf("restore challenge %s: %w", snap.ID, err)
	}
	w.Attach(c)
	for _, sc := range c.Codes() {
		w.Attach(sc)
	}
	return c, nil
}

func (r *securityRepository) Get(_ context.Context, w *uow.Work, id uuid.UUID) (*security.Challenge, error) {
	tx, err := txFrom(w)
	if err != nil {
		return nil, err
	}
	snap, ok := tx.staged.challenges[id]
	if !ok {
		return nil, security.ErrChallengeNotFound
	}
	return r.restore(w, snap)
}

func (r *securityRepository) Store(_ context.Context, w *uow.Work, c *security.Challenge) error {
	tx, err := txFrom(w)
	if err != nil {
		return err
	}
	w.Track(c)
	for _, sc := range c.Codes() {
		w.Track(sc)
	}
	snap := c.Snapshot()
	tx.staged.challenges[snap.ID] = snap
	return nil
}

func (r *securityRepository) StoreCode(_ context.Context, w *uow.Work, sc *security.SecurityCode) error {
	tx, err := txFrom(w)
	if err != nil {
		return err
	}
	w.Track(sc)
	challengeID := sc.Challenge().ID()
	snap, ok := tx.staged.challenges[challengeID]
	if !ok {
		return security.ErrCodeNotFound
	}
	updated := sc.Snapshot()
	for i, cs := range snap.Codes {
		if cs.ID == updated.ID {
			snap.Codes[i] = updated
			tx.staged.challenges[challengeID] = snap
			return nil
		}
	}
	return security.ErrCodeNotFound
}

// sorted returns the user's challenges newest first.
func sorted(tx *Tx, userID uuid.UUID) []security.ChallengeSnapshot {
	var out []security.ChallengeSnapshot
	for _, snap := range tx.staged.challenges {
		if snap.UserID == userID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *securityRepository) FindNonInvalidated(_ context.Context, w *uow.Work, userID uuid.UUID, purpose security.Purpose) (*security.Challenge, error) {
	tx, err := txFrom(w)
	if err != nil {
		return nil, err
	}
	for _, snap := range sorted(tx, userID) {
		if snap.Purpose == purpose && snap.InvalidatedAt == nil {
			return r.restore(w, snap)
		}
	}
	return nil, security.ErrNoActiveChallenge
}

func (r *securityRepository) FindCodeByValue(_ context.Context, w *uow.Work, userID uuid.UUID, code security.Code, purpose security.Purpose) (*security.SecurityCode, error) {
	tx, err := txFrom(w)
	if err != nil {
		return nil, err
	}
	var (
		best     security.ChallengeSnapshot
		bestCode uuid.UUID
		bestRank = -1
	)
	for _, snap := range sorted(tx, userID) {
		for _, cs := range snap.Codes {
			if cs.Code != code.String() {
				continue
			}
			if rank := codeRank(snap, cs, purpose); rank > bestRank {
				best, bestCode, bestRank = snap, cs.ID, rank
			}
		}
	}
	if bestRank < 0 {
		return nil, security.ErrCodeNotFound
	}
	return r.pick(w, best, bestCode)
}

// codeRank orders candidates like the SQL lookup: matching purpose and unused
// first, then matching purpose, then unused.
func codeRank(snap security.ChallengeSnapshot, cs security.CodeSnapshot, purpose security.Purpose) int {
	rank := 0
	if snap.Purpose == purpose {
		rank += 2
	}
	if cs.Status == security.StatusUnused {
		rank++
	}
	return rank
}

func (r *securityRepository) pick(w *uow.Work, snap security.ChallengeSnapshot, codeID uuid.UUID) (*security.SecurityCode, error) {
	c, err := r.restore(w, snap)
	if err != nil {
		return nil, err
	}
	for _, sc := range c.Codes() {
		if sc.ID() == codeID {
			return sc, nil
		}
	}
	return nil, security.ErrCodeNotFound
}

func (r *securityRepository) CountActiveChallenges(_ context.Context, w *uow.Work, userID uuid.UUID) (int, error) {
	tx, err := txFrom(w)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, snap := range tx.staged.challenges {
		if snap.UserID == userID && snap.InvalidatedAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *securityRepository) ListByUser(_ context.Context, w *uow.Work, userID uuid.UUID) ([]*security.Challenge, error) {
	tx, err := txFrom(w)
	if err != nil {
		return nil, err
	}
	snaps := sorted(tx, userID)
	out := make([]*security.Challenge, 0, len(snaps))
	for _, snap := range snaps {
		c, err := r.restore(w, snap)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
