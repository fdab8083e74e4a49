package engine

import (
	"github.com/shopspring/decimal"

	"github.com/TheCrazyGM/mining-arc/internal/config"
	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

// ComputePayout turns a holder into a payout decision.
//
// amount = truncate(balance * rate, 4 fractional digits), truncation
// toward zero. Truncating instead of rounding half-up keeps the engine
// from over-paying by drift across many holders. The whole computation
// is exact decimal arithmetic; no floats touch monetary amounts.
func ComputePayout(h domain.Holder, cfg *config.Config) domain.PayoutDecision {
	amount := decimal.NewFromInt(h.Balance).Mul(cfg.PayoutRate).Truncate(4)

	return domain.PayoutDecision{
		Holder:   h,
		Amount:   amount,
		Eligible: amount.Cmp(domain.PayoutQuantum) >= 0,
	}
}

// ComputePayouts maps ComputePayout over a holder batch, preserving order.
func ComputePayouts(holders []domain.Holder, cfg *config.Config) []domain.PayoutDecision {
	decisions := make([]domain.PayoutDecision, 0, len(holders))
	for _, h := range holders {
		decisions = append(decisions, ComputePayout(h, cfg))
	}
	return decisions
}
