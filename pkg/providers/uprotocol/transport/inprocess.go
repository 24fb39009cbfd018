package transport

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Handler answers one in-process RPC call.
type Handler func(ctx context.Context, methodURI string, payload []byte) ([]byte, error)

// InProcess is a loopback transport for a provider colocated with its
// target in the same process — local development or a test double. It
// never touches the network; every Invoke is handed over an unbuffered
// channel to a single dispatch goroutine that calls Handler, so the call
// still crosses a goroutine boundary the way a real transport would.
type InProcess struct {
	requests chan inProcessCall
	done     chan struct{}
}

type inProcessCall struct {
	ctx       context.Context
	methodURI string
	payload   []byte
	result    chan inProcessResult
}

type inProcessResult struct {
	payload []byte
	err     error
}

// NewInProcess constructs an in-process transport and starts its single
// dispatch goroutine. Selecting this transport always means no
// zenohConfig or brokerAddress was configured, so construction logs a
// warning that it's a test/dev fallback.
func NewInProcess(logger *slog.Logger, handler Handler) *InProcess {
	if logger != nil {
		logger.Warn("no transport configured, falling back to in-process loopback (test/dev only)")
	}

	t := &InProcess{
		requests: make(chan inProcessCall),
		done:     make(chan struct{}),
	}
	go t.loop(handler)
	return t
}

func (t *InProcess) loop(handler Handler) {
	for {
		select {
		case call := <-t.requests:
			if handler == nil {
				call.result <- inProcessResult{err: fmt.Errorf("uprotocol: in-process transport has no registered handler for %s", call.methodURI)}
				continue
			}
			payload, err := handler(call.ctx, call.methodURI, call.payload)
			call.result <- inProcessResult{payload: payload, err: err}
		case <-t.done:
			return
		}
	}
}

func (t *InProcess) Invoke(ctx context.Context, methodURI string, timeout time.Duration, payload []byte) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result := make(chan inProcessResult, 1)
	select {
	case t.requests <- inProcessCall{ctx: ctx, methodURI: methodURI, payload: payload, result: result}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, fmt.Errorf("uprotocol: in-process transport closed")
	}

	select {
	case r := <-result:
		return r.payload, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *InProcess) Close() error {
	close(t.done)
	return nil
}
