package ledger

import (
	"context"
	"fmt"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

// holdersPageLimit is the ledger's maximum page size for richlist queries.
const holdersPageLimit = 1000

// TokenClient queries token state from the ledger.
type TokenClient struct {
	rpc RPC
}

// NewTokenClient creates a new TokenClient.
func NewTokenClient(rpc RPC) *TokenClient {
	return &TokenClient{rpc: rpc}
}

// holdersQuery is the parameter object for token_getHolders.
type holdersQuery struct {
	Token  string `json:"token"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// GetHolders retrieves the full richlist for a token symbol, paging
// through the ledger until a short page signals the end.
func (c *TokenClient) GetHolders(ctx context.Context, symbol string) ([]domain.RawHolder, error) {
	var all []domain.RawHolder

	for offset := 0; ; offset += holdersPageLimit {
		var page []domain.RawHolder
		params := holdersQuery{Token: symbol, Limit: holdersPageLimit, Offset: offset}
		if err := c.rpc.Call(ctx, "token_getHolders", params, &page); err != nil {
			return nil, fmt.Errorf("get holders for %s: %w", symbol, err)
		}

		all = append(all, page...)
		if len(page) < holdersPageLimit {
			return all, nil
		}
	}
}
