package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttemptStatus classifies a dispatch attempt.
type AttemptStatus string

const (
	AttemptSuccess AttemptStatus = "SUCCESS"
	AttemptFailed  AttemptStatus = "FAILED"
)

// AttemptRecord is the append-only record of one dispatch attempt.
// Exactly one is created per eligible holder per run; never mutated
// after creation.
type AttemptRecord struct {
	RunID       string
	Account     string
	Balance     int64
	Amount      decimal.Decimal
	Status      AttemptStatus
	TxID        string // empty on failure; may be empty on success too
	AttemptedAt time.Time
}
