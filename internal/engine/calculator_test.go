package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

func TestComputePayout_QuantizedAmounts(t *testing.T) {
	tests := []struct {
		name     string
		balance  int64
		rate     string
		want     string
		eligible bool
	}{
		{"whole multiple", 100, "0.25", "25.0000", true},
		{"fractional payout", 3, "0.25", "0.7500", true},
		{"small but eligible", 1, "0.003", "0.0030", true},
		{"quantizes to zero", 1, "0.00001", "0.0000", false},
		{"exactly at quantum", 1, "0.0001", "0.0001", true},
		{"truncates toward zero", 7, "0.333333", "2.3333", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.PayoutRate = decimal.RequireFromString(tt.rate)

			dec := ComputePayout(domain.Holder{Account: "x", Balance: tt.balance}, cfg)

			if got := dec.Amount.StringFixed(4); got != tt.want {
				t.Errorf("Amount: got %s, want %s", got, tt.want)
			}
			if dec.Eligible != tt.eligible {
				t.Errorf("Eligible: got %t, want %t", dec.Eligible, tt.eligible)
			}
		})
	}
}

func TestComputePayout_Deterministic(t *testing.T) {
	cfg := testConfig()
	h := domain.Holder{Account: "alice", Balance: 12345}

	first := ComputePayout(h, cfg)
	for i := 0; i < 100; i++ {
		again := ComputePayout(h, cfg)
		if !again.Amount.Equal(first.Amount) {
			t.Fatalf("Iteration %d: got %s, want %s", i, again.Amount, first.Amount)
		}
	}
}

func TestComputePayout_NeverOverpays(t *testing.T) {
	// Truncation must never round a payout up past balance*rate.
	cfg := testConfig()
	cfg.PayoutRate = decimal.RequireFromString("0.0003")

	for balance := int64(1); balance <= 1000; balance++ {
		dec := ComputePayout(domain.Holder{Account: "x", Balance: balance}, cfg)
		exact := decimal.NewFromInt(balance).Mul(cfg.PayoutRate)
		if dec.Amount.GreaterThan(exact) {
			t.Fatalf("Balance %d: payout %s exceeds exact %s", balance, dec.Amount, exact)
		}
	}
}

func TestComputePayouts_PreservesOrder(t *testing.T) {
	cfg := testConfig()
	holders := []domain.Holder{
		{Account: "c", Balance: 3},
		{Account: "a", Balance: 1},
		{Account: "b", Balance: 2},
	}

	decisions := ComputePayouts(holders, cfg)
	if len(decisions) != 3 {
		t.Fatalf("Expected 3 decisions, got %d", len(decisions))
	}
	for i, d := range decisions {
		if d.Holder.Account != holders[i].Account {
			t.Errorf("Position %d: got %s, want %s", i, d.Holder.Account, holders[i].Account)
		}
	}
}
