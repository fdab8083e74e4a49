package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// HandshakeTimeout is the timeout for the initial dial.
	HandshakeTimeout time.Duration
	// ReadTimeout is timeout for reading a response.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing a request.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// WSClient implements RPC over a single WebSocket connection.
//
// The engine issues calls strictly sequentially, so the client keeps the
// simple request/response discipline: one in-flight call at a time,
// serialized by a mutex. A broken connection is redialed once per call.
type WSClient struct {
	endpoint string
	config   WSClientConfig

	mu        sync.Mutex
	conn      *websocket.Conn
	closed    atomic.Bool
	requestID atomic.Uint64
}

// DialWS creates a new WebSocket client and connects to the endpoint.
func DialWS(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClient{
		endpoint: endpoint,
		config:   cfg,
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// connect establishes the WebSocket connection. Callers hold c.mu or are
// the constructor.
func (c *WSClient) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// Call performs one JSON-RPC call over the WebSocket connection.
func (c *WSClient) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	if c.closed.Load() {
		return fmt.Errorf("websocket client is closed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.roundTrip(ctx, method, params)
	if err != nil {
		// One reconnect attempt per call; the retry policy beyond that
		// belongs to the caller.
		if rerr := c.reconnect(ctx); rerr != nil {
			return err
		}
		resp, err = c.roundTrip(ctx, method, params)
		if err != nil {
			return err
		}
	}

	if resp.Error != nil {
		return resp.Error
	}

	if result != nil && resp.Result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}

// roundTrip writes one request and reads frames until the matching
// response id arrives. Callers hold c.mu.
func (c *WSClient) roundTrip(ctx context.Context, method string, params interface{}) (*rpcResponse, error) {
	reqID := c.requestID.Add(1)
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	deadline := time.Now().Add(c.config.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	readDeadline := time.Now().Add(c.config.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(readDeadline) {
		readDeadline = d
	}
	if err := c.conn.SetReadDeadline(readDeadline); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	for {
		var resp rpcResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.ID == reqID {
			return &resp, nil
		}
		// Unsolicited or stale frame; keep reading until the deadline.
	}
}

// reconnect redials the endpoint after a transport failure. Callers hold c.mu.
func (c *WSClient) reconnect(ctx context.Context) error {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	return c.connect(ctx)
}

// Close closes the underlying connection.
func (c *WSClient) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.conn.Close()
}
