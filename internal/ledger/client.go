package ledger

import (
	"context"
	"fmt"
	"net/url"
)

// Dial opens an RPC connection to the endpoint, selecting the transport
// by URL scheme: ws/wss use the WebSocket client, http/https the HTTP
// client. Options apply to the HTTP transport only.
func Dial(ctx context.Context, endpoint string, opts ...ClientOption) (Conn, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse ledger endpoint: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		return DialWS(ctx, endpoint, nil)
	case "http", "https":
		return NewHTTPClient(endpoint, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported ledger endpoint scheme %q", u.Scheme)
	}
}
