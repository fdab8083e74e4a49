// Package main runs a single payout distribution over the current
// holder snapshot and writes the audit artifact.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/TheCrazyGM/mining-arc/internal/config"
	"github.com/TheCrazyGM/mining-arc/internal/keys"
	"github.com/TheCrazyGM/mining-arc/internal/ledger"
	"github.com/TheCrazyGM/mining-arc/internal/orchestrator"
	"github.com/TheCrazyGM/mining-arc/internal/reporting"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
	"github.com/TheCrazyGM/mining-arc/internal/storage/clickhouse"
	"github.com/TheCrazyGM/mining-arc/internal/storage/memory"
	"github.com/TheCrazyGM/mining-arc/internal/storage/migrations"
	pgstore "github.com/TheCrazyGM/mining-arc/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	// Flags override environment-sourced settings.
	dryRun := flag.Bool("dry-run", cfg.DryRun, "Compute and audit payouts without dispatching transfers")
	outputDir := flag.String("output-dir", cfg.OutputDir, "Directory for the audit artifact")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (empty to skip)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (empty to skip)")
	verbose := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	cfg.DryRun = *dryRun
	cfg.OutputDir = *outputDir
	cfg.PostgresDSN = *postgresDSN
	cfg.ClickhouseDSN = *clickhouseDSN

	logger := newLogger(cfg.LogLevel, *verbose)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warnf("received signal %v, cancelling run", sig)
		cancel()
	}()

	activeKey, err := keys.Parse(cfg.ActiveKey)
	if err != nil {
		logger.Fatalf("parse active key: %v", err)
	}
	if _, err := keys.Parse(cfg.PostingKey); err != nil {
		logger.Fatalf("parse posting key: %v", err)
	}

	conn, err := ledger.Dial(ctx, cfg.LedgerEndpoint)
	if err != nil {
		logger.Fatalf("dial ledger %s: %v", cfg.LedgerEndpoint, err)
	}
	defer conn.Close()

	tokenClient := ledger.NewTokenClient(conn)
	wallet := ledger.NewWallet(conn, activeKey)

	attemptStore, runStore, aggStore, closeStores, err := buildStores(ctx, cfg, logger, *useMemory)
	if err != nil {
		logger.Fatalf("storage: %v", err)
	}
	defer closeStores()

	orch := orchestrator.New(cfg, orchestrator.Options{
		Source:         tokenClient,
		Sender:         wallet,
		AttemptStore:   attemptStore,
		RunStore:       runStore,
		AggregateStore: aggStore,
		Logger:         logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		// Audit export failure: funds may already have moved.
		logger.Fatalf("run %s: %v", result.RunID, err)
	}

	fmt.Println(reporting.RenderHolderTable(result.Decisions))

	s := reporting.Summarize(result.Stats)
	fmt.Printf("Holders: %d  Sent: %d  Failed: %d  Distributed: %s %s\n",
		s.TotalHolders, s.SuccessCount, s.FailureCount, s.TotalDistributed.StringFixed(4), cfg.TokenName)
	fmt.Printf("Success rate: %.4f  Average payout: %s  Duration: %s\n",
		s.SuccessRate, s.AveragePayout.StringFixed(4), s.Duration)
	fmt.Printf("Audit artifact: %s\n", result.AuditPath)

	// Per-holder and store failures never change the exit code, but the
	// operator sees every one of them.
	for _, e := range result.Errors {
		logger.Warnf("%s", e)
	}
}

// buildStores wires persistence. With -use-memory (or no DSNs at all) the run
// keeps its records in memory and only the audit file survives the process.
func buildStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger, useMemory bool) (storage.AttemptStore, storage.RunStore, storage.RunAggregateStore, func(), error) {
	if useMemory || (cfg.PostgresDSN == "" && cfg.ClickhouseDSN == "") {
		return memory.NewAttemptStore(), memory.NewRunStore(), memory.NewRunAggregateStore(), func() {}, nil
	}

	var (
		attemptStore storage.AttemptStore
		runStore     storage.RunStore
		aggStore     storage.RunAggregateStore
		closers      []func()
	)

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		attemptStore = pgstore.NewAttemptStore(pool)
		runStore = pgstore.NewRunStore(pool)
		closers = append(closers, pool.Close)
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		aggStore = clickhouse.NewRunAggregateStore(conn)
		closers = append(closers, func() {
			if err := conn.Close(); err != nil {
				logger.Warnf("close clickhouse: %v", err)
			}
		})
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	return attemptStore, runStore, aggStore, closeAll, nil
}

func newLogger(level string, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}
