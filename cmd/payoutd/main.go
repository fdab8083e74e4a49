// Package main runs the payout engine as a daemon: one distribution per
// interval, with Prometheus metrics exposed over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TheCrazyGM/mining-arc/internal/config"
	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/keys"
	"github.com/TheCrazyGM/mining-arc/internal/ledger"
	"github.com/TheCrazyGM/mining-arc/internal/observability"
	"github.com/TheCrazyGM/mining-arc/internal/orchestrator"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
	"github.com/TheCrazyGM/mining-arc/internal/storage/clickhouse"
	"github.com/TheCrazyGM/mining-arc/internal/storage/memory"
	"github.com/TheCrazyGM/mining-arc/internal/storage/migrations"
	pgstore "github.com/TheCrazyGM/mining-arc/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	dryRun := flag.Bool("dry-run", cfg.DryRun, "Compute and audit payouts without dispatching transfers")
	runInterval := flag.Duration("run-interval", cfg.RunInterval, "Time between payout runs")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics HTTP address (empty to disable)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (empty to skip)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (empty to skip)")
	verbose := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	cfg.DryRun = *dryRun
	cfg.RunInterval = *runInterval
	cfg.MetricsAddr = *metricsAddr
	cfg.PostgresDSN = *postgresDSN
	cfg.ClickhouseDSN = *clickhouseDSN

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("configuration: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Infof("metrics server listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Errorf("metrics server: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		sig := <-sigCh
		logger.Infof("received signal %v, finishing current run", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Warnf("received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	if err := run(ctx, cfg, logger, *useMemory); err != nil && err != context.Canceled {
		logger.Fatalf("%v", err)
	}

	close(done)
	logger.Info("shutdown complete")
}

// run sets up collaborators once and then loops: one payout per interval,
// starting immediately.
func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, useMemory bool) error {
	activeKey, err := keys.Parse(cfg.ActiveKey)
	if err != nil {
		return fmt.Errorf("parse active key: %w", err)
	}
	if _, err := keys.Parse(cfg.PostingKey); err != nil {
		return fmt.Errorf("parse posting key: %w", err)
	}

	dialed, err := ledger.Dial(ctx, cfg.LedgerEndpoint)
	if err != nil {
		return fmt.Errorf("dial ledger %s: %w", cfg.LedgerEndpoint, err)
	}
	conn := timedConn{dialed}
	defer conn.Close()

	attemptStore, runStore, aggStore, closeStores, err := buildStores(ctx, cfg, useMemory)
	if err != nil {
		return err
	}
	defer closeStores()

	orch := orchestrator.New(cfg, orchestrator.Options{
		Source:         ledger.NewTokenClient(conn),
		Sender:         ledger.NewWallet(conn, activeKey),
		AttemptStore:   attemptStore,
		RunStore:       runStore,
		AggregateStore: aggStore,
		Logger:         logger,
	})

	ticker := time.NewTicker(cfg.RunInterval)
	defer ticker.Stop()

	for {
		executeRun(ctx, orch, logger)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// executeRun performs one payout run and records its metrics. A fatal audit
// failure stops the daemon: continuing to move funds with no durable trail
// is worse than downtime.
func executeRun(ctx context.Context, orch *orchestrator.Orchestrator, logger *logrus.Logger) {
	result, err := orch.Run(ctx)
	if err != nil {
		observability.RecordRun("audit_failed", result.Stats.Duration().Seconds())
		logger.Fatalf("run %s: %v", result.RunID, err)
	}

	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "degraded"
	}
	observability.RecordRun(outcome, result.Stats.Duration().Seconds())
	observability.RecordHolders(result.Stats.TotalHolders)
	for _, r := range result.Records {
		amount := 0.0
		if r.Status == domain.AttemptSuccess {
			amount = r.Amount.InexactFloat64()
		}
		observability.RecordAttempt(string(r.Status), amount)
	}
	observability.MarkSuccessfulRun(float64(result.Stats.EndedAt.Unix()))

	for _, e := range result.Errors {
		logger.Warnf("%s", e)
	}
}

// timedConn records per-method RPC latency around the wrapped transport.
type timedConn struct {
	ledger.Conn
}

func (c timedConn) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	start := time.Now()
	err := c.Conn.Call(ctx, method, params, result)
	observability.RecordRPCLatency(method, time.Since(start).Seconds())
	return err
}

// buildStores wires persistence. Same policy as the one-shot binary: no DSNs
// means in-memory stores and only the audit files survive.
func buildStores(ctx context.Context, cfg *config.Config, useMemory bool) (storage.AttemptStore, storage.RunStore, storage.RunAggregateStore, func(), error) {
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
		closers = append(closers, func() { conn.Close() })
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	return attemptStore, runStore, aggStore, closeAll, nil
}
