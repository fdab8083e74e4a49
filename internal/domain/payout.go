package domain

import "github.com/shopspring/decimal"

// PayoutQuantum is the smallest dispatchable amount (4 fractional digits).
var PayoutQuantum = decimal.New(1, -4) // 0.0001

// PayoutDecision is the calculator's verdict for one holder.
// Amount is quantized to 4 fractional digits using round-toward-zero
// truncation. Eligible means Amount >= PayoutQuantum; ineligible decisions
// are never dispatched but still count toward RunStats.TotalHolders.
type PayoutDecision struct {
	Holder   Holder
	Amount   decimal.Decimal
	Eligible bool
}
