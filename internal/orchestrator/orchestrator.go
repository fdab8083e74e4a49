// Package orchestrator coordinates one payout run end to end.
// Flow: retrieve holders → filter → compute payouts → dispatch → persist → audit export.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TheCrazyGM/mining-arc/internal/config"
	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/engine"
	"github.com/TheCrazyGM/mining-arc/internal/idhash"
	"github.com/TheCrazyGM/mining-arc/internal/reporting"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
)

// HolderSource supplies the raw balance snapshot for the run.
type HolderSource interface {
	GetHolders(ctx context.Context, symbol string) ([]domain.RawHolder, error)
}

// Orchestrator runs the payout chain for one token.
type Orchestrator struct {
	cfg        *config.Config
	source     HolderSource
	dispatcher *engine.Dispatcher

	// Stores are optional; a nil store skips that persistence step.
	attemptStore   storage.AttemptStore
	runStore       storage.RunStore
	aggregateStore storage.RunAggregateStore

	logger logrus.FieldLogger
	now    func() time.Time
}

// Options for creating an Orchestrator.
type Options struct {
	Source HolderSource
	Sender engine.TransferSender

	AttemptStore   storage.AttemptStore
	RunStore       storage.RunStore
	AggregateStore storage.RunAggregateStore

	Logger logrus.FieldLogger
	Now    func() time.Time
	Sleep  func(time.Duration)
}

// New creates a new Orchestrator.
func New(cfg *config.Config, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	dispatcher := engine.NewDispatcher(cfg, engine.DispatcherOptions{
		Sender: opts.Sender,
		Logger: logger,
		Now:    now,
		Sleep:  opts.Sleep,
	})

	return &Orchestrator{
		cfg:            cfg,
		source:         opts.Source,
		dispatcher:     dispatcher,
		attemptStore:   opts.AttemptStore,
		runStore:       opts.RunStore,
		aggregateStore: opts.AggregateStore,
		logger:         logger,
		now:            now,
	}
}

// RunResult contains everything one run produced.
type RunResult struct {
	RunID     string
	Stats     domain.RunStats
	Decisions []domain.PayoutDecision
	Records   []domain.AttemptRecord
	AuditPath string

	// Errors collects non-fatal problems (retrieval failure, store
	// write failures). Fatal conditions are returned as an error from
	// Run instead.
	Errors []string
}

// Run executes one complete payout run.
//
// A batch retrieval failure does not abort the run: it completes with
// zero payments and an audit file reflecting that. A failed audit
// export is fatal and returned as the error; funds may already have
// moved by then, so the caller must surface it loudly.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	startedAt := o.now()
	runID := idhash.ComputeRunID(o.cfg.TokenQuery, startedAt.UnixMilli())
	stats := domain.NewRunStats(startedAt)

	result := &RunResult{RunID: runID}

	o.logger.Infof("run %s: retrieving %s holders", runID, o.cfg.TokenQuery)
	holders := o.retrieveHolders(ctx, result)

	result.Decisions = engine.ComputePayouts(holders, o.cfg)
	result.Records = o.dispatcher.Dispatch(ctx, runID, result.Decisions, &stats)
	stats.EndedAt = o.now()
	result.Stats = stats

	run := &domain.RunRecord{
		RunID:  runID,
		Token:  o.cfg.TokenQuery,
		DryRun: o.cfg.DryRun,
		Stats:  stats,
	}
	o.persist(ctx, run, result)

	path, err := reporting.WriteAuditFile(o.cfg.OutputDir, o.cfg.TokenQuery, recordPtrs(result.Records), startedAt)
	if err != nil {
		return result, err
	}
	result.AuditPath = path

	o.logger.Infof("run %s: %d holders, %d sent, %d failed, %s %s distributed",
		runID, stats.TotalHolders, stats.SuccessCount, stats.FailureCount,
		stats.TotalDistributed.StringFixed(4), o.cfg.TokenName)

	return result, nil
}

// retrieveHolders fetches and filters the balance snapshot. Both a source
// failure and an unparseable batch degrade to an empty holder set; the run
// still completes and audits that nothing was paid.
func (o *Orchestrator) retrieveHolders(ctx context.Context, result *RunResult) []domain.Holder {
	raw, err := o.source.GetHolders(ctx, o.cfg.TokenQuery)
	if err != nil {
		rerr := &engine.RetrievalError{Cause: err}
		o.logger.Warnf("%v: completing run with zero payments", rerr)
		result.Errors = append(result.Errors, rerr.Error())
		return nil
	}

	holders, err := engine.FilterHolders(raw, o.cfg)
	if err != nil {
		o.logger.Warnf("%v: completing run with zero payments", err)
		result.Errors = append(result.Errors, err.Error())
		return nil
	}

	return holders
}

// persist writes the run and its attempts to whichever stores are wired.
// Store failures are recorded but never abort the run: the audit file is
// the artifact the operator must get.
func (o *Orchestrator) persist(ctx context.Context, run *domain.RunRecord, result *RunResult) {
	if o.runStore != nil {
		if err := o.runStore.Insert(ctx, run); err != nil {
			o.storeError(result, fmt.Errorf("persist run %s: %w", run.RunID, err))
		}
	}

	if o.attemptStore != nil && len(result.Records) > 0 {
		if err := o.attemptStore.InsertBulk(ctx, recordPtrs(result.Records)); err != nil {
			o.storeError(result, fmt.Errorf("persist attempts for run %s: %w", run.RunID, err))
		}
	}

	if o.aggregateStore != nil {
		if err := o.aggregateStore.Insert(ctx, domain.AggregateFromRecord(run)); err != nil {
			o.storeError(result, fmt.Errorf("persist aggregate for run %s: %w", run.RunID, err))
		}
	}
}

func (o *Orchestrator) storeError(result *RunResult, err error) {
	o.logger.Warnf("%v", err)
	result.Errors = append(result.Errors, err.Error())
}

func recordPtrs(records []domain.AttemptRecord) []*domain.AttemptRecord {
	ptrs := make([]*domain.AttemptRecord, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}
	return ptrs
}
