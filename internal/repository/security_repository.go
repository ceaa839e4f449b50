package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/uow"
)

type securityRepository struct{}

// NewSecurityRepository returns a Postgres-backed implementation.
func NewSecurityRepository() SecurityRepository {
	return &securityRepository{}
}

func (r *securityRepository) Get(ctx context.Context, w *uow.Work, id uuid.UUID) (*security.Challenge, error) {
	const query = `
        SELECT id, user_id, purpose, created_at, expires_at, invalidated_at
        FROM security_challenges WHERE id=$1`

	tx, err := pgTx(w)
	if err != nil {
		return nil, err
	}
	var snap security.ChallengeSnapshot
	if err := tx.QueryRow(ctx, query, id).Scan(
		&snap.ID,
		&snap.UserID,
		&snap.Purpose,
		&snap.CreatedAt,
		&snap.ExpiresAt,
		&snap.InvalidatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, security.ErrChallengeNotFound
		}
		return nil, err
	}
	return r.load(ctx, w, tx, snap)
}

func (r *securityRepository) load(ctx context.Context, w *uow.Work, tx pgx.Tx, snap security.ChallengeSnapshot) (*security.Challenge, error) {
	const query = `
        SELECT id, code, status, used_at
        FROM security_codes WHERE challenge_id=$1
        ORDER BY position`

	rows, err := tx.Query(ctx, query, snap.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cs security.CodeSnapshot
		if err := rows.Scan(&cs.ID, &cs.Code, &cs.Status, &cs.UsedAt); err != nil {
			return nil, err
		}
		snap.Codes = append(snap.Codes, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

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

func (r *securityRepository) Store(ctx context.Context, w *uow.Work, c *security.Challenge) error {
	const challengeQuery = `
        INSERT INTO security_challenges (id, user_id, purpose, created_at, expires_at, invalidated_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO UPDATE SET invalidated_at=EXCLUDED.invalidated_at`
	const codeQuery = `
        INSERT INTO security_codes (id, challenge_id, position, code, status, used_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO UPDATE SET status=EXCLUDED.status, used_at=EXCLUDED.used_at`

	tx, err := pgTx(w)
	if err != nil {
		return err
	}
	w.Track(c)
	snap := c.Snapshot()
	if _, err := tx.Exec(ctx, challengeQuery,
		snap.ID,
		snap.UserID,
		snap.Purpose,
		snap.CreatedAt,
		snap.ExpiresAt,
		snap.InvalidatedAt,
	); err != nil {
		return err
	}

	if len(snap.Codes) > 0 {
		batch := &pgx.Batch{}
		for i, cs := range snap.Codes {
			batch.Queue(codeQuery, cs.ID, snap.ID, i, cs.Code, cs.Status, cs.UsedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	for _, sc := range c.Codes() {
		w.Track(sc)
	}
	return nil
}

func (r *securityRepository) StoreCode(ctx context.Context, w *uow.Work, sc *security.SecurityCode) error {
	const query = `UPDATE security_codes SET status=$2, used_at=$3 WHERE id=$1`

	tx, err := pgTx(w)
	if err != nil {
		return err
	}
	w.Track(sc)
	snap := sc.Snapshot()
	tag, err := tx.Exec(ctx, query, snap.ID, snap.Status, snap.UsedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return security.ErrCodeNotFound
	}
	return nil
}

func (r *securityRepository) FindNonInvalidated(ctx context.Context, w *uow.Work, userID uuid.UUID, purpose security.Purpose) (*security.Challenge, error) {
	const query = `
        SELECT id, user_id, purpose, created_at, expires_at, invalidated_at
        FROM security_challenges
        WHERE user_id=$1 AND purpose=$2 AND invalidated_at IS NULL
        ORDER BY created_at DESC
        LIMIT 1`

	tx, err := pgTx(w)
	if err != nil {
		return nil, err
	}
	var snap security.ChallengeSnapshot
	if err := tx.QueryRow(ctx, query, userID, purpose).Scan(
		&snap.ID,
		&snap.UserID,
		&snap.Purpose,
		&snap.CreatedAt,
		&snap.ExpiresAt,
		&snap.InvalidatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, security.ErrNoActiveChallenge
		}
		return nil, err
	}
	return r.load(ctx, w, tx, snap)
}

func (r *securityRepository) FindCodeByValue(ctx context.Context, w *uow.Work, userID uuid.UUID, code security.Code, purpose security.Purpose) (*security.SecurityCode, error) {
	const query = `
        SELECT sc.id, sc.challenge_id
        FROM security_codes sc
        JOIN security_challenges ch ON ch.id = sc.challenge_id
        WHERE ch.user_id=$1 AND sc.code=$2
        ORDER BY (ch.purpose = $3 AND sc.status = 'unused') DESC,
                 (ch.purpose = $3) DESC,
                 (sc.status = 'unused') DESC,
                 ch.created_at DESC
        LIMIT 1`

	tx, err := pgTx(w)
	if err != nil {
		return nil, err
	}
	var codeID, challengeID uuid.UUID
	if err := tx.QueryRow(ctx, query, userID, code.String(), purpose).Scan(&codeID, &challengeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, security.ErrCodeNotFound
		}
		return nil, err
	}
	challenge, err := r.Get(ctx, w, challengeID)
	if err != nil {
		return nil, err
	}
	for _, sc := range challenge.Codes() {
		if sc.ID() == codeID {
			return sc, nil
		}
	}
	return nil, security.ErrCodeNotFound
}

func (r *securityRepository) CountActiveChallenges(ctx context.Context, w *uow.Work, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM security_challenges WHERE user_id=$1 AND invalidated_at IS NULL`

	tx, err := pgTx(w)
	if err != nil {
		return 0, err
	}
	var count int
	if err := tx.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *securityRepository) ListByUser(ctx context.Context, w *uow.Work, userID uuid.UUID) ([]*security.Challenge, error) {
	const query = `
        SELECT id, user_id, purpose, created_at, expires_at, invalidated_at
        FROM security_challenges WHERE user_id=$1
        ORDER BY created_at DESC`

	tx, err := pgTx(w)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	var snaps []security.ChallengeSnapshot
	for rows.Next() {
		var snap security.ChallengeSnapshot
		if err := rows.Scan(
			&snap.ID,
			&snap.UserID,
			&snap.Purpose,
			&snap.CreatedAt,
			&snap.ExpiresAt,
			&snap.InvalidatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	challenges := make([]*security.Challenge, 0, len(snaps))
	for _, snap := range snaps {
		c, err := r.load(ctx, w, tx, snap)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}
	return challenges, nil
}
