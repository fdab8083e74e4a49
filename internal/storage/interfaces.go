package storage

import (
	"context"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

// AttemptStore provides access to dispatch attempt storage.
type AttemptStore interface {
	// Insert adds a new attempt. Returns ErrDuplicateKey if (run_id, account) exists.
	Insert(ctx context.Context, a *domain.AttemptRecord) error

	// InsertBulk adds multiple attempts atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, attempts []*domain.AttemptRecord) error

	// GetByRunID retrieves all attempts for a run, ordered by attempted_at ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.AttemptRecord, error)

	// GetByAccount retrieves all attempts ever made to an account, ordered by attempted_at ASC.
	GetByAccount(ctx context.Context, account string) ([]*domain.AttemptRecord, error)
}

// RunStore provides access to payout run storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunRecord) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunRecord, error)

	// GetRecent retrieves up to limit runs, newest first.
	GetRecent(ctx context.Context, limit int) ([]*domain.RunRecord, error)
}

// RunAggregateStore provides access to long-horizon payout analytics.
type RunAggregateStore interface {
	// Insert adds a new aggregate row. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, a *domain.RunAggregate) error

	// GetByToken retrieves all aggregates for a token, ordered by started_at ASC.
	GetByToken(ctx context.Context, token string) ([]*domain.RunAggregate, error)

	// GetAll retrieves all aggregates, ordered by started_at ASC.
	GetAll(ctx context.Context) ([]*domain.RunAggregate, error)
}
