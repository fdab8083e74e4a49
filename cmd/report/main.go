// Package main renders payout run reports from the stores: a single run's
// summary with its attempts, recent runs, or the long-horizon history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/TheCrazyGM/mining-arc/internal/config"
	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/reporting"
	"github.com/TheCrazyGM/mining-arc/internal/storage/clickhouse"
	"github.com/TheCrazyGM/mining-arc/internal/storage/migrations"
	pgstore "github.com/TheCrazyGM/mining-arc/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	runID := flag.String("run-id", "", "Render one run's summary and attempts")
	recent := flag.Int("recent", 0, "Render the N most recent runs")
	history := flag.Bool("history", false, "Render the long-horizon run history from ClickHouse")
	token := flag.String("token", "", "Restrict history to one token symbol")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
	flag.Parse()

	ctx := context.Background()

	switch {
	case *runID != "":
		if err := renderRun(ctx, *postgresDSN, *runID); err != nil {
			fail(err)
		}
	case *recent > 0:
		if err := renderRecent(ctx, *postgresDSN, *recent); err != nil {
			fail(err)
		}
	case *history:
		if err := renderHistory(ctx, *clickhouseDSN, *token); err != nil {
			fail(err)
		}
	default:
		fmt.Fprintln(os.Stderr, "one of -run-id, -recent or -history is required")
		flag.Usage()
		os.Exit(2)
	}
}

func renderRun(ctx context.Context, dsn, runID string) error {
	pool, err := connectPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	run, err := pgstore.NewRunStore(pool).GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}

	attempts, err := pgstore.NewAttemptStore(pool).GetByRunID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load attempts for run %s: %w", runID, err)
	}

	fmt.Print(reporting.RenderRunSummary(run))
	fmt.Print(reporting.RenderCSV(attempts, run.Stats.StartedAt))
	return nil
}

func renderRecent(ctx context.Context, dsn string, limit int) error {
	pool, err := connectPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	runs, err := pgstore.NewRunStore(pool).GetRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("load recent runs: %w", err)
	}

	for _, run := range runs {
		fmt.Print(reporting.RenderRunSummary(run))
	}
	return nil
}

func renderHistory(ctx context.Context, dsn, token string) error {
	if dsn == "" {
		return fmt.Errorf("-clickhouse-dsn (or CLICKHOUSE_DSN) is required for -history")
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect clickhouse: %w", err)
	}
	defer conn.Close()

	store := clickhouse.NewRunAggregateStore(conn)

	var aggs []*domain.RunAggregate
	if token != "" {
		aggs, err = store.GetByToken(ctx, token)
	} else {
		aggs, err = store.GetAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("load run history: %w", err)
	}

	fmt.Print(reporting.RenderHistory(aggs))
	return nil
}

func connectPostgres(ctx context.Context, dsn string) (*pgstore.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("-postgres-dsn (or POSTGRES_DSN) is required")
	}
	return pgstore.NewPool(ctx, dsn)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
