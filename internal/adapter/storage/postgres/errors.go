package postgres

import (
	"errors"
	"fmt"

	"wallet-ledger-service/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes Postgres raises on retryable serialization races.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// translateConflict wraps retryable Postgres failures with
// domain.ErrConcurrentModification so callers can recognize them with
// errors.Is. Other errors pass through unchanged.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %w", domain.ErrConcurrentModification, err)
		}
	}
	return err
}
