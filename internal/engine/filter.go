// Package engine implements the payout distribution core: holder
// filtering, payout calculation and sequential transfer dispatch.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/TheCrazyGM/mining-arc/internal/config"
	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

// FilterHolders normalizes raw richlist entries into eligible holders.
//
// Balances are parsed as exact decimals and floor-truncated to whole
// units; fractional holdings never round up. Holders with a truncated
// balance below 1 or a blacklisted account are dropped. Input order is
// preserved.
//
// A single unparseable balance aborts the whole batch with
// *RetrievalError: the source either yields a trustworthy snapshot or
// nothing at all.
func FilterHolders(raw []domain.RawHolder, cfg *config.Config) ([]domain.Holder, error) {
	holders := make([]domain.Holder, 0, len(raw))

	for _, rh := range raw {
		balance, err := decimal.NewFromString(rh.Balance)
		if err != nil {
			return nil, &RetrievalError{
				Cause: fmt.Errorf("parse balance %q for account %q: %w", rh.Balance, rh.Account, err),
			}
		}

		whole := balance.Truncate(0).IntPart()
		if whole < 1 {
			continue
		}
		if cfg.Blacklisted(rh.Account) {
			continue
		}

		holders = append(holders, domain.Holder{
			Account: rh.Account,
			Balance: whole,
		})
	}

	return holders, nil
}
