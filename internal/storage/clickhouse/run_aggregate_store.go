package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
)

// RunAggregateStore implements storage.RunAggregateStore using ClickHouse.
type RunAggregateStore struct {
	conn *Conn
}

// NewRunAggregateStore creates a new RunAggregateStore.
func NewRunAggregateStore(conn *Conn) *RunAggregateStore {
	return &RunAggregateStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RunAggregateStore = (*RunAggregateStore)(nil)

// Insert adds a new aggregate row. Returns ErrDuplicateKey if run_id exists.
// ClickHouse MergeTree doesn't enforce uniqueness at insert time, so the
// store checks explicitly before inserting.
func (s *RunAggregateStore) Insert(ctx context.Context, a *domain.RunAggregate) error {
	if a == nil || a.RunID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, a.RunID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO payout_run_aggregates (
			run_id, token, dry_run,
			total_holders, success_count, failure_count, total_distributed,
			started_at, duration_ms
		) VALUES (
			?, ?, ?,
			?, ?, ?, ?,
			?, ?
		)
	`

	err = s.conn.Exec(ctx, query,
		a.RunID, a.Token, a.DryRun,
		int64(a.TotalHolders), int64(a.SuccessCount), int64(a.FailureCount), a.TotalDistributed,
		a.StartedAt, a.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("insert run aggregate: %w", err)
	}
	return nil
}

// exists checks whether an aggregate row for run_id is already stored.
func (s *RunAggregateStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM payout_run_aggregates WHERE run_id = ?`, runID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

const selectAggregateColumns = `
	SELECT run_id, token, dry_run,
		total_holders, success_count, failure_count, total_distributed,
		started_at, duration_ms
	FROM payout_run_aggregates
`

// GetByToken retrieves all aggregates for a token, ordered by started_at ASC.
func (s *RunAggregateStore) GetByToken(ctx context.Context, token string) ([]*domain.RunAggregate, error) {
	rows, err := s.conn.Query(ctx, selectAggregateColumns+` WHERE token = ? ORDER BY started_at ASC`, token)
	if err != nil {
		return nil, fmt.Errorf("get aggregates by token: %w", err)
	}
	defer rows.Close()

	return scanAggregates(rows)
}

// GetAll retrieves all aggregates, ordered by started_at ASC.
func (s *RunAggregateStore) GetAll(ctx context.Context) ([]*domain.RunAggregate, error) {
	rows, err := s.conn.Query(ctx, selectAggregateColumns+` ORDER BY started_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all aggregates: %w", err)
	}
	defer rows.Close()

	return scanAggregates(rows)
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanAggregates scans multiple rows into a slice.
func scanAggregates(rows chRows) ([]*domain.RunAggregate, error) {
	var result []*domain.RunAggregate

	for rows.Next() {
		var (
			a                            domain.RunAggregate
			holders, successes, failures int64
			startedAt                    time.Time
		)
		if err := rows.Scan(
			&a.RunID, &a.Token, &a.DryRun,
			&holders, &successes, &failures, &a.TotalDistributed,
			&startedAt, &a.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("scan run aggregate: %w", err)
		}

		a.TotalHolders = int(holders)
		a.SuccessCount = int(successes)
		a.FailureCount = int(failures)
		a.StartedAt = startedAt

		result = append(result, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run aggregates: %w", err)
	}

	return result, nil
}
