// Package postgres is the authoritative persistence for payout attempts
// and run headers. Amounts travel as text and map to NUMERIC columns so
// no float conversion ever touches them.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the shared connection pool behind the payout stores.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to the database named by dsn and verifies it answers.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close releases the pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// uniqueViolation is the SQLSTATE raised when an insert collides with a
// primary key. The stores translate it into storage.ErrDuplicateKey so the
// append-only contract reads the same across backends.
const uniqueViolation = "23505"

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
