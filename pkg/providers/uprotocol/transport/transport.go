// Package transport provides the pluggable RPC transports the uProtocol
// provider invokes its three remote methods over: MQTT5, Zenoh, and an
// in-process loopback for tests and colocated targets.
package transport

import (
	"context"
	"time"
)

// Transport issues one request/response RPC to a uProtocol method URI and
// returns the raw response payload. Implementations must be safe for
// concurrent Invoke calls; responses are correlated internally by request
// id so callers never need to serialize their own calls.
type Transport interface {
	Invoke(ctx context.Context, methodURI string, timeout time.Duration, payload []byte) ([]byte, error)
	Close() error
}
