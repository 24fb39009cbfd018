package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
)

// mqtt5ConnectBackoffCap bounds the total elapsed delay spent retrying
// the initial broker connection, per the transport-selection table's
// "exponential backoff capped at 5 seconds total elapsed delay" rule.
const mqtt5ConnectBackoffCap = 5 * time.Second

const mqtt5ConnectBaseDelay = 100 * time.Millisecond

// MQTT5 is an RPC transport over an MQTT5 broker. Requests are published
// to methodURI with a response topic and correlation id attached via the
// MQTT5 ResponseTopic and CorrelationData publish properties; responses are routed back to the waiting caller
// by correlation id, so one shared subscription serves every in-flight
// call.
type MQTT5 struct {
	client        *paho.Client
	responseTopic string

	mu      sync.Mutex
	pending map[string]chan *paho.Publish
}

// MQTT5Config configures the broker connection.
type MQTT5Config struct {
	BrokerAddress string
	ClientID      string
	Logger        *slog.Logger
}

// NewMQTT5 dials brokerAddress, retrying with exponential backoff capped
// at mqtt5ConnectBackoffCap total elapsed time. Authentication and
// permission-denied failures abort immediately rather than retrying,
// since no amount of waiting makes a bad credential good.
func NewMQTT5(ctx context.Context, cfg MQTT5Config) (*MQTT5, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	responseTopic := fmt.Sprintf("uprotocol/rpc/response/%s", cfg.ClientID)

	t := &MQTT5{
		responseTopic: responseTopic,
		pending:       make(map[string]chan *paho.Publish),
	}

	client, err := connectWithBackoff(ctx, cfg, t)
	if err != nil {
		return nil, err
	}
	t.client = client

	if _, err := client.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: responseTopic, QoS: 1}},
	}); err != nil {
		_ = client.Disconnect(&paho.Disconnect{ReasonCode: 0})
		return nil, fmt.Errorf("uprotocol: failed to subscribe to response topic: %w", err)
	}

	return t, nil
}

// connectAuthError marks a broker rejection that retrying cannot fix.
type connectAuthError struct{ reasonCode byte }

func (e *connectAuthError) Error() string {
	return fmt.Sprintf("mqtt5: connection rejected (reason code %d)", e.reasonCode)
}

func connectWithBackoff(ctx context.Context, cfg MQTT5Config, t *MQTT5) (*paho.Client, error) {
	deadline := time.Now().Add(mqtt5ConnectBackoffCap)
	delay := mqtt5ConnectBaseDelay

	var lastErr error
	for attempt := 1; ; attempt++ {
		client, err := dialAndConnect(ctx, cfg, t)
		if err == nil {
			return client, nil
		}
		lastErr = err

		var authErr *connectAuthError
		if errors.As(err, &authErr) {
			return nil, fmt.Errorf("uprotocol: mqtt5 connect failed: %w", err)
		}

		if time.Now().Add(delay).After(deadline) {
			break
		}
		if cfg.Logger != nil {
			cfg.Logger.Warn("mqtt5 connect failed, retrying", "attempt", attempt, "error", err.Error())
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}

	return nil, fmt.Errorf("uprotocol: mqtt5 connect exhausted backoff budget: %w", lastErr)
}

func dialAndConnect(ctx context.Context, cfg MQTT5Config, t *MQTT5) (*paho.Client, error) {
	network, addr, useTLS := parseBrokerAddress(cfg.BrokerAddress)

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("mqtt5: dial %s: %w", addr, err)
	}
	if useTLS {
		conn = tls.Client(conn, &tls.Config{MinVersion: tls.VersionTLS12})
	}

	client := paho.NewClient(paho.ClientConfig{
		Conn:     conn,
		ClientID: cfg.ClientID,
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			func(pr paho.PublishReceived) (bool, error) {
				t.route(pr.Packet)
				return true, nil
			},
		},
	})

	ack, err := client.Connect(ctx, &paho.Connect{
		KeepAlive:  30,
		ClientID:   cfg.ClientID,
		CleanStart: true,
	})
	if err != nil {
		return nil, err
	}
	if ack.ReasonCode == 134 || ack.ReasonCode == 135 {
		return nil, &connectAuthError{reasonCode: ack.ReasonCode}
	}
	if ack.ReasonCode != 0 {
		return nil, fmt.Errorf("mqtt5: connect refused with reason code %d", ack.ReasonCode)
	}

	return client, nil
}

// parseBrokerAddress accepts "tcp://host:port", "ssl://host:port", or a
// bare "host:port" (treated as plain tcp).
func parseBrokerAddress(raw string) (network, addr string, useTLS bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "tcp", raw, false
	}
	switch strings.ToLower(u.Scheme) {
	case "ssl", "tls", "mqtts":
		return "tcp", u.Host, true
	default:
		return "tcp", u.Host, false
	}
}

func (t *MQTT5) route(p *paho.Publish) {
	if p.Properties == nil || len(p.Properties.CorrelationData) == 0 {
		return
	}
	corr := string(p.Properties.CorrelationData)

	t.mu.Lock()
	ch, ok := t.pending[corr]
	t.mu.Unlock()
	if ok {
		ch <- p
	}
}

func (t *MQTT5) Invoke(ctx context.Context, methodURI string, timeout time.Duration, payload []byte) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	corr := uuid.NewString()
	result := make(chan *paho.Publish, 1)

	t.mu.Lock()
	t.pending[corr] = result
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.pending, corr)
		t.mu.Unlock()
	}()

	_, err := t.client.Publish(ctx, &paho.Publish{
		Topic:   methodURI,
		QoS:     1,
		Payload: payload,
		Properties: &paho.PublishProperties{
			ResponseTopic:   t.responseTopic,
			CorrelationData: []byte(corr),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("uprotocol: mqtt5 publish to %s: %w", methodURI, err)
	}

	select {
	case resp := <-result:
		return resp.Payload, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("uprotocol: mqtt5 rpc to %s timed out: %w", methodURI, ctx.Err())
	}
}

func (t *MQTT5) Close() error {
	return t.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
}
