package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"github.com/TheCrazyGM/mining-arc/internal/keys"
)

// captureRPC records the last transfer params and returns a canned id.
type captureRPC struct {
	lastMethod string
	lastParams transferParams
	err        error
}

func (c *captureRPC) Call(_ context.Context, method string, params interface{}, result interface{}) error {
	c.lastMethod = method
	c.lastParams = params.(transferParams)
	if c.err != nil {
		return c.err
	}
	data, _ := json.Marshal(transferResult{ID: "tx123"})
	return json.Unmarshal(data, result)
}

func testKey(t *testing.T) *keys.SigningKey {
	t.Helper()

	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	encoded, err := keys.Encode(seed)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	key, err := keys.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return key
}

func TestWallet_Transfer(t *testing.T) {
	rpc := &captureRPC{}
	key := testKey(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	wallet := NewWallet(rpc, key).WithClock(func() time.Time { return fixed })

	txID, err := wallet.Transfer(context.Background(), "alice",
		decimal.RequireFromString("25"), "ARCHON", "test memo")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if txID != "tx123" {
		t.Errorf("txID: got %s, want tx123", txID)
	}

	p := rpc.lastParams
	if rpc.lastMethod != "token_transfer" {
		t.Errorf("method: got %s", rpc.lastMethod)
	}
	if p.From != key.Account() {
		t.Errorf("from: got %s, want %s", p.From, key.Account())
	}
	if p.To != "alice" || p.Token != "ARCHON" || p.Memo != "test memo" {
		t.Errorf("unexpected params: %+v", p)
	}
	if p.Quantity != "25.0000" {
		t.Errorf("quantity: got %s, want 25.0000", p.Quantity)
	}
	if p.Timestamp != fixed.UnixMilli() {
		t.Errorf("timestamp: got %d, want %d", p.Timestamp, fixed.UnixMilli())
	}
}

func TestWallet_SignatureVerifies(t *testing.T) {
	rpc := &captureRPC{}
	key := testKey(t)
	wallet := NewWallet(rpc, key)

	if _, err := wallet.Transfer(context.Background(), "bob",
		decimal.RequireFromString("0.75"), "ARCHON", "memo"); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	p := rpc.lastParams
	message := fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		p.From, p.To, p.Token, p.Quantity, p.Memo, p.Timestamp)
	digest := sha256.Sum256([]byte(message))

	sig, err := base58.Decode(p.Signature)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	pub, err := base58.Decode(key.Account())
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}

	if !ed25519.Verify(ed25519.PublicKey(pub), digest[:], sig) {
		t.Error("signature does not verify")
	}
}

func TestWallet_TransferErrorPropagates(t *testing.T) {
	rpc := &captureRPC{err: fmt.Errorf("node rejected")}
	wallet := NewWallet(rpc, testKey(t))

	if _, err := wallet.Transfer(context.Background(), "alice",
		decimal.RequireFromString("1"), "ARCHON", "memo"); err == nil {
		t.Error("expected error, got nil")
	}
}
