// Package postgres provides PostgreSQL-backed store implementations.
// It is the authoritative persistence for attempts and runs.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
)

// AttemptStore implements storage.AttemptStore using PostgreSQL.
type AttemptStore struct {
	pool *Pool
}

// NewAttemptStore creates a new AttemptStore.
func NewAttemptStore(pool *Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AttemptStore = (*AttemptStore)(nil)

const insertAttemptQuery = `
	INSERT INTO payout_attempts (
		run_id, account, balance, amount, status, tx_id, attempted_at
	) VALUES (
		$1, $2, $3, $4::numeric, $5, $6, $7
	)
`

// Insert adds a new attempt. Returns ErrDuplicateKey if (run_id, account) exists.
func (s *AttemptStore) Insert(ctx context.Context, a *domain.AttemptRecord) error {
	_, err := s.pool.Exec(ctx, insertAttemptQuery,
		a.RunID, a.Account, a.Balance, a.Amount.String(), string(a.Status), a.TxID, a.AttemptedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert payout attempt: %w", err)
	}
	return nil
}

// InsertBulk adds multiple attempts atomically. Fails entire batch on any duplicate.
func (s *AttemptStore) InsertBulk(ctx context.Context, attempts []*domain.AttemptRecord) error {
	if len(attempts) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range attempts {
		_, err := tx.Exec(ctx, insertAttemptQuery,
			a.RunID, a.Account, a.Balance, a.Amount.String(), string(a.Status), a.TxID, a.AttemptedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert payout attempt in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

const selectAttemptColumns = `
	SELECT run_id, account, balance, amount::text, status, tx_id, attempted_at
	FROM payout_attempts
`

// GetByRunID retrieves all attempts for a run, ordered by attempted_at ASC.
func (s *AttemptStore) GetByRunID(ctx context.Context, runID string) ([]*domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, selectAttemptColumns+` WHERE run_id = $1 ORDER BY attempted_at ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("get attempts by run id: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// GetByAccount retrieves all attempts to an account, ordered by attempted_at ASC.
func (s *AttemptStore) GetByAccount(ctx context.Context, account string) ([]*domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, selectAttemptColumns+` WHERE account = $1 ORDER BY attempted_at ASC`, account)
	if err != nil {
		return nil, fmt.Errorf("get attempts by account: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// scanAttempts reads all rows into attempt records.
func scanAttempts(rows pgx.Rows) ([]*domain.AttemptRecord, error) {
	var result []*domain.AttemptRecord

	for rows.Next() {
		var (
			a         domain.AttemptRecord
			amountStr string
			status    string
		)
		if err := rows.Scan(&a.RunID, &a.Account, &a.Balance, &amountStr, &status, &a.TxID, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan payout attempt: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
		}
		a.Amount = amount
		a.Status = domain.AttemptStatus(status)

		result = append(result, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payout attempts: %w", err)
	}

	return result, nil
}
