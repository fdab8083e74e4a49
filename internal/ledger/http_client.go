package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default transport configuration.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
	DefaultMaxDelay   = 10 * time.Second
)

// HTTPClient implements RPC over HTTP JSON-RPC 2.0 with exponential
// backoff on transport failures.
type HTTPClient struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
	requestID  atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts. Zero means a single
// best-effort attempt, which is what the transfer path requires.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the initial retry delay; it doubles per attempt up
// to DefaultMaxDelay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a ledger JSON-RPC client for the endpoint.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close implements Conn; the HTTP transport holds no persistent resources.
func (c *HTTPClient) Close() error { return nil }

// errRetryable marks failures worth another attempt. RPC-level errors
// never carry it: the node answered, retrying would resend the request.
type errRetryable struct{ err error }

func (e *errRetryable) Error() string { return e.err.Error() }
func (e *errRetryable) Unwrap() error { return e.err }

// Call performs one JSON-RPC call, retrying transport and server
// failures with exponential backoff.
func (c *HTTPClient) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			if delay *= 2; delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		err := c.post(ctx, body, result)
		if err == nil {
			return nil
		}

		var retryable *errRetryable
		if !errors.As(err, &retryable) {
			return err
		}
		lastErr = retryable.err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// post performs a single HTTP round trip and decodes the response into
// result. Transport and server-side failures come back as *errRetryable.
func (c *HTTPClient) post(ctx context.Context, body []byte, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &errRetryable{fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errRetryable{fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &errRetryable{errors.New("rate limited (429)")}
	}
	if resp.StatusCode != http.StatusOK {
		return &errRetryable{fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return &errRetryable{fmt.Errorf("unmarshal response: %w", err)}
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}
