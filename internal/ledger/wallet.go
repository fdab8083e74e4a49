package ledger

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"github.com/TheCrazyGM/mining-arc/internal/keys"
)

// Wallet submits signed token transfers. It implements
// engine.TransferSender and performs exactly one attempt per call; retry
// policy is deliberately absent from this path.
type Wallet struct {
	rpc RPC
	key *keys.SigningKey
	now func() time.Time
}

// NewWallet creates a Wallet signing with the given key.
func NewWallet(rpc RPC, key *keys.SigningKey) *Wallet {
	return &Wallet{
		rpc: rpc,
		key: key,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic signing input.
func (w *Wallet) WithClock(now func() time.Time) *Wallet {
	w.now = now
	return w
}

// transferParams is the parameter object for token_transfer.
type transferParams struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Token     string `json:"token"`
	Quantity  string `json:"quantity"`
	Memo      string `json:"memo"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

// transferResult is the ledger's response to token_transfer.
type transferResult struct {
	ID string `json:"id"`
}

// Transfer submits one signed transfer and returns the ledger
// transaction id. The ledger may return an empty id; that is still a
// successful submission.
func (w *Wallet) Transfer(ctx context.Context, to string, amount decimal.Decimal, token, memo string) (string, error) {
	params := transferParams{
		From:      w.key.Account(),
		To:        to,
		Token:     token,
		Quantity:  amount.StringFixed(4),
		Memo:      memo,
		Timestamp: w.now().UnixMilli(),
	}
	params.Signature = w.sign(params)

	var result transferResult
	if err := w.rpc.Call(ctx, "token_transfer", params, &result); err != nil {
		return "", fmt.Errorf("broadcast transfer: %w", err)
	}

	return result.ID, nil
}

// sign produces the base58 ed25519 signature over the canonical transfer
// message: SHA256(from|to|token|quantity|memo|timestamp).
func (w *Wallet) sign(p transferParams) string {
	message := fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		p.From, p.To, p.Token, p.Quantity, p.Memo, p.Timestamp)

	digest := sha256.Sum256([]byte(message))
	return base58.Encode(w.key.Sign(digest[:]))
}
