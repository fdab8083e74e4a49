package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/TheCrazyGM/mining-arc/internal/config"
	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/idhash"
)

// TransferSender is the engine's only write path to the outside world:
// the collaborator able to submit one signed token transfer.
type TransferSender interface {
	// Transfer submits a transfer and returns the ledger transaction id.
	// An empty id with a nil error is still a success.
	Transfer(ctx context.Context, to string, amount decimal.Decimal, token, memo string) (string, error)
}

// Dispatcher sends payouts one holder at a time, isolating per-holder
// failures and enforcing a fixed minimum spacing between attempts.
type Dispatcher struct {
	cfg    *config.Config
	sender TransferSender
	logger logrus.FieldLogger
	now    func() time.Time
	sleep  func(time.Duration)
}

// DispatcherOptions contains collaborators for creating a Dispatcher.
// Now and Sleep default to the real clock; tests inject fakes.
type DispatcherOptions struct {
	Sender TransferSender
	Logger logrus.FieldLogger
	Now    func() time.Time
	Sleep  func(time.Duration)
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg *config.Config, opts DispatcherOptions) *Dispatcher {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Dispatcher{
		cfg:    cfg,
		sender: opts.Sender,
		logger: logger,
		now:    now,
		sleep:  sleep,
	}
}

// Dispatch attempts every eligible decision exactly once, in order.
//
// Ineligible decisions are skipped without a record and without a delay,
// but still count toward stats.TotalHolders. A failed transfer is
// recorded as FAILED and does not stop subsequent holders. In dry-run
// mode the sender is never called; a deterministic placeholder
// transaction id is synthesized instead and the attempt reports success,
// so the accounting path is identical to live mode.
func (d *Dispatcher) Dispatch(ctx context.Context, runID string, decisions []domain.PayoutDecision, stats *domain.RunStats) []domain.AttemptRecord {
	records := make([]domain.AttemptRecord, 0, len(decisions))

	for _, dec := range decisions {
		stats.TotalHolders++
		if !dec.Eligible {
			d.logger.Debugf("skipping %s: payout %s below quantum", dec.Holder.Account, dec.Amount)
			continue
		}

		record := d.attempt(ctx, runID, dec)
		records = append(records, record)

		if record.Status == domain.AttemptSuccess {
			stats.SuccessCount++
			stats.TotalDistributed = stats.TotalDistributed.Add(record.Amount)
		} else {
			stats.FailureCount++
		}

		// Unconditional spacing per attempted holder, live or dry-run,
		// to respect the ledger's rate limits.
		d.sleep(d.cfg.SendInterval)
	}

	return records
}

// attempt dispatches a single eligible decision.
func (d *Dispatcher) attempt(ctx context.Context, runID string, dec domain.PayoutDecision) domain.AttemptRecord {
	record := domain.AttemptRecord{
		RunID:       runID,
		Account:     dec.Holder.Account,
		Balance:     dec.Holder.Balance,
		Amount:      dec.Amount,
		AttemptedAt: d.now(),
	}

	if d.cfg.DryRun {
		record.Status = domain.AttemptSuccess
		record.TxID = idhash.ComputePlaceholderTxID(runID, dec.Holder.Account, dec.Amount.String())
		d.logger.Infof("[dry-run] would send %s %s to %s", dec.Amount, d.cfg.TokenName, dec.Holder.Account)
		return record
	}

	d.logger.Infof("sending %s %s to %s", dec.Amount, d.cfg.TokenName, dec.Holder.Account)

	txID, err := d.sender.Transfer(ctx, dec.Holder.Account, dec.Amount, d.cfg.TokenName, Memo(dec.Amount, d.cfg))
	if err != nil {
		// Per-holder recovery: record the failure and move on.
		terr := &TransferError{Account: dec.Holder.Account, Cause: err}
		d.logger.Warnf("%v", terr)
		record.Status = domain.AttemptFailed
		record.TxID = ""
		return record
	}

	record.Status = domain.AttemptSuccess
	record.TxID = txID
	return record
}

// Memo renders the transfer memo carried by every payout.
func Memo(amount decimal.Decimal, cfg *config.Config) string {
	return fmt.Sprintf("%s = %s %s mining share per %s", amount, cfg.PayoutRate, cfg.TokenName, cfg.TokenQuery)
}
