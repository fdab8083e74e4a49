package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func rpcResult(t *testing.T, w http.ResponseWriter, id uint64, result interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestHTTPClient_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.JSONRPC != "2.0" {
			t.Errorf("expected jsonrpc 2.0, got %s", req.JSONRPC)
		}
		if req.Method != "token_getHolders" {
			t.Errorf("expected method token_getHolders, got %s", req.Method)
		}

		rpcResult(t, w, req.ID, []map[string]string{
			{"account": "alice", "balance": "100"},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	var result []map[string]string
	if err := client.Call(context.Background(), "token_getHolders", nil, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(result) != 1 || result[0]["account"] != "alice" {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32000, "message": "insufficient balance"},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))

	err := client.Call(context.Background(), "token_transfer", nil, nil)
	if err == nil {
		t.Fatal("expected RPC error, got nil")
	}
	if !strings.Contains(err.Error(), "insufficient balance") {
		t.Errorf("expected RPC error message, got: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("RPC error must not be retried, got %d calls", calls.Load())
	}
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		rpcResult(t, w, req.ID, "ok")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))

	var result string
	if err := client.Call(context.Background(), "ping", nil, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %q", result)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestHTTPClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		rpcResult(t, w, req.ID, "ok")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))

	if err := client.Call(context.Background(), "ping", nil, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestHTTPClient_MaxRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(2), WithRetryDelay(time.Millisecond))

	err := client.Call(context.Background(), "ping", nil, nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls (initial + 2 retries), got %d", calls.Load())
	}
}

func TestHTTPClient_ZeroRetriesSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(0))

	if err := client.Call(context.Background(), "token_transfer", nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single best-effort attempt, got %d calls", calls.Load())
	}
}

func TestDial_UnsupportedScheme(t *testing.T) {
	if _, err := Dial(context.Background(), "ftp://example.com"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestDial_HTTPScheme(t *testing.T) {
	conn, err := Dial(context.Background(), "http://127.0.0.1:8899")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, ok := conn.(*HTTPClient); !ok {
		t.Errorf("expected *HTTPClient, got %T", conn)
	}
}
