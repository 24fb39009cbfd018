package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/eclipse-zenoh/zenoh-go/zenoh"
)

// zenohSession is the narrow slice of the Zenoh API this transport
// depends on. Isolating it behind an interface keeps the real zenoh-go
// session object (and any API drift in it) out of the rest of this
// package, and lets tests substitute a fake session.
type zenohSession interface {
	Query(ctx context.Context, keyExpr string, payload []byte, timeout time.Duration) ([]byte, error)
	Close() error
}

// Zenoh is an RPC transport over a Zenoh session, using Zenoh's
// query/reply primitive to implement uProtocol's request/response RPC:
// methodURI becomes the query key expression, and the (sole) reply's
// payload is the RPC response.
type Zenoh struct {
	session zenohSession
}

// NewZenoh opens a Zenoh session from the config file at configPath.
func NewZenoh(configPath string) (*Zenoh, error) {
	session, err := openZenohSession(configPath)
	if err != nil {
		return nil, fmt.Errorf("uprotocol: failed to open zenoh session from %s: %w", configPath, err)
	}
	return &Zenoh{session: session}, nil
}

func (t *Zenoh) Invoke(ctx context.Context, methodURI string, timeout time.Duration, payload []byte) ([]byte, error) {
	resp, err := t.session.Query(ctx, methodURI, payload, timeout)
	if err != nil {
		return nil, fmt.Errorf("uprotocol: zenoh query to %s: %w", methodURI, err)
	}
	return resp, nil
}

func (t *Zenoh) Close() error {
	return t.session.Close()
}

// zenohGoSession adapts *zenoh.Session to zenohSession.
type zenohGoSession struct {
	session *zenoh.Session
}

func openZenohSession(configPath string) (zenohSession, error) {
	cfg, err := zenoh.ConfigFromFile(configPath)
	if err != nil {
		return nil, err
	}
	session, err := zenoh.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &zenohGoSession{session: session}, nil
}

func (s *zenohGoSession) Query(ctx context.Context, keyExpr string, payload []byte, timeout time.Duration) ([]byte, error) {
	opts := zenoh.NewGetOptions()
	opts.SetPayload(payload)
	opts.SetTimeout(timeout)

	replies, err := s.session.Get(keyExpr, "", opts)
	if err != nil {
		return nil, err
	}

	select {
	case reply, ok := <-replies:
		if !ok {
			return nil, fmt.Errorf("zenoh: query %s received no reply", keyExpr)
		}
		sample, err := reply.Sample()
		if err != nil {
			return nil, err
		}
		return sample.Payload().Bytes(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, fmt.Errorf("zenoh: query %s timed out", keyExpr)
	}
}

func (s *zenohGoSession) Close() error {
	return s.session.Close()
}
