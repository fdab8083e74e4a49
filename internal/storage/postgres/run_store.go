package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunRecord) error {
	query := `
		INSERT INTO payout_runs (
			run_id, token, dry_run,
			total_holders, success_count, failure_count, total_distributed,
			started_at, ended_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7::numeric,
			$8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.Token, r.DryRun,
		r.Stats.TotalHolders, r.Stats.SuccessCount, r.Stats.FailureCount, r.Stats.TotalDistributed.String(),
		r.Stats.StartedAt, r.Stats.EndedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert payout run: %w", err)
	}
	return nil
}

const selectRunColumns = `
	SELECT run_id, token, dry_run,
		total_holders, success_count, failure_count, total_distributed::text,
		started_at, ended_at
	FROM payout_runs
`

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRecord, error) {
	row := s.pool.QueryRow(ctx, selectRunColumns+` WHERE run_id = $1`, runID)

	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get payout run by id: %w", err)
	}
	return r, nil
}

// GetRecent retrieves up to limit runs, newest first.
func (s *RunStore) GetRecent(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx, selectRunColumns+` ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent payout runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payout run: %w", err)
		}
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payout runs: %w", err)
	}

	return result, nil
}

// scanRun reads one row into a run record.
func scanRun(row pgx.Row) (*domain.RunRecord, error) {
	var (
		r              domain.RunRecord
		distributedStr string
	)

	err := row.Scan(
		&r.RunID, &r.Token, &r.DryRun,
		&r.Stats.TotalHolders, &r.Stats.SuccessCount, &r.Stats.FailureCount, &distributedStr,
		&r.Stats.StartedAt, &r.Stats.EndedAt,
	)
	if err != nil {
		return nil, err
	}

	distributed, err := decimal.NewFromString(distributedStr)
	if err != nil {
		return nil, fmt.Errorf("parse stored total %q: %w", distributedStr, err)
	}
	r.Stats.TotalDistributed = distributed

	return &r, nil
}
