// Package ledger implements the token ledger collaborators: a JSON-RPC
// client with HTTP and WebSocket transports, the richlist query, and the
// transfer wallet.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
)

// RPC is the transport-agnostic JSON-RPC interface.
type RPC interface {
	// Call performs one JSON-RPC call. A non-nil result receives the
	// unmarshalled response payload.
	Call(ctx context.Context, method string, params interface{}, result interface{}) error
}

// Conn is an RPC transport that holds resources needing release.
type Conn interface {
	RPC
	Close() error
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}
