package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/account-security/internal/uow"
)

// ErrNotPostgres is returned when a postgres repository is handed a unit of
// work that wraps some other kind of transaction.
var ErrNotPostgres = errors.New("unit of work is not backed by a postgres transaction")

func pgTx(w *uow.Work) (pgx.Tx, error) {
	tx, ok := w.Tx().(pgx.Tx)
	if !ok {
		return nil, ErrNotPostgres
	}
	return tx, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
