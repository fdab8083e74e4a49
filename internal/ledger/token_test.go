package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

// fakeRPC serves canned pages for token_getHolders and records params.
type fakeRPC struct {
	pages  [][]domain.RawHolder
	params []holdersQuery
	err    error
}

func (f *fakeRPC) Call(_ context.Context, method string, params interface{}, result interface{}) error {
	if f.err != nil {
		return f.err
	}
	if method != "token_getHolders" {
		return fmt.Errorf("unexpected method %s", method)
	}

	q := params.(holdersQuery)
	f.params = append(f.params, q)

	page := len(f.params) - 1
	var holders []domain.RawHolder
	if page < len(f.pages) {
		holders = f.pages[page]
	}

	data, err := json.Marshal(holders)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func holdersPage(n int, prefix string) []domain.RawHolder {
	page := make([]domain.RawHolder, n)
	for i := range page {
		page[i] = domain.RawHolder{
			Account: fmt.Sprintf("%s%d", prefix, i),
			Balance: "10",
		}
	}
	return page
}

func TestTokenClient_GetHoldersSinglePage(t *testing.T) {
	rpc := &fakeRPC{pages: [][]domain.RawHolder{holdersPage(3, "acct")}}
	client := NewTokenClient(rpc)

	got, err := client.GetHolders(context.Background(), "ARCHONM")
	if err != nil {
		t.Fatalf("GetHolders: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 holders, got %d", len(got))
	}
	if len(rpc.params) != 1 {
		t.Errorf("expected 1 RPC call for a short page, got %d", len(rpc.params))
	}
	if rpc.params[0].Token != "ARCHONM" || rpc.params[0].Offset != 0 {
		t.Errorf("unexpected params: %+v", rpc.params[0])
	}
}

func TestTokenClient_GetHoldersPagination(t *testing.T) {
	rpc := &fakeRPC{pages: [][]domain.RawHolder{
		holdersPage(holdersPageLimit, "a"),
		holdersPage(holdersPageLimit, "b"),
		holdersPage(7, "c"),
	}}
	client := NewTokenClient(rpc)

	got, err := client.GetHolders(context.Background(), "ARCHONM")
	if err != nil {
		t.Fatalf("GetHolders: %v", err)
	}
	if want := 2*holdersPageLimit + 7; len(got) != want {
		t.Fatalf("expected %d holders, got %d", want, len(got))
	}
	if len(rpc.params) != 3 {
		t.Fatalf("expected 3 RPC calls, got %d", len(rpc.params))
	}
	for i, q := range rpc.params {
		if q.Offset != i*holdersPageLimit {
			t.Errorf("call %d: offset %d, want %d", i, q.Offset, i*holdersPageLimit)
		}
	}
}

func TestTokenClient_GetHoldersError(t *testing.T) {
	rpc := &fakeRPC{err: fmt.Errorf("node unavailable")}
	client := NewTokenClient(rpc)

	if _, err := client.GetHolders(context.Background(), "ARCHONM"); err == nil {
		t.Error("expected error, got nil")
	}
}
