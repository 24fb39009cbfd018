// Package uprotocol implements a target provider that reconciles
// components against a remote device reachable over uProtocol, invoking
// GET/UPDATE/DELETE as RPCs over a pluggable transport (MQTT5, Zenoh, or
// an in-process loopback).
package uprotocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/eclipse-symphony/target-provider-go/pkg/logging"
	"github.com/eclipse-symphony/target-provider-go/pkg/model"
	"github.com/eclipse-symphony/target-provider-go/pkg/provider"
	"github.com/eclipse-symphony/target-provider-go/pkg/providers/uprotocol/transport"
)

// Provider drives reconciliation against a single remote uProtocol
// entity. It owns its transport for the lifetime of the provider; Close
// releases it.
type Provider struct {
	cfg       config
	transport transport.Transport
	logger    *slog.Logger
}

var _ provider.Provider = (*Provider)(nil)

// New constructs a Provider from its opaque JSON configuration, selecting
// and connecting its transport per the zenohConfig/brokerAddress table.
func New(ctx context.Context, configJSON []byte) (*Provider, error) {
	cfg, err := parseConfig(configJSON)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("uprotocol", "INFO")

	var tr transport.Transport
	switch cfg.Transport {
	case transportZenoh:
		tr, err = transport.NewZenoh(cfg.ZenohConfig)
	case transportMQTT5:
		tr, err = transport.NewMQTT5(ctx, transport.MQTT5Config{
			BrokerAddress: cfg.BrokerAddress,
			ClientID:      cfg.ClientID,
			Logger:        logger,
		})
	default:
		tr = transport.NewInProcess(logger, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("uprotocol: failed to construct transport: %w", err)
	}

	return &Provider{cfg: cfg, transport: tr, logger: logger}, nil
}

// NewWithTransport constructs a Provider from parsed configuration and an
// already-constructed transport, bypassing transport selection entirely.
// Tests use this to inject a fake transport.Transport and observe the RPC
// sequence a real device would see.
func NewWithTransport(configJSON []byte, tr transport.Transport) (*Provider, error) {
	cfg, err := parseConfig(configJSON)
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, transport: tr, logger: logging.NewLogger("uprotocol", "INFO")}, nil
}

// Close releases the provider's transport.
func (p *Provider) Close() error {
	return p.transport.Close()
}

func (p *Provider) GetValidationRule(_ context.Context) (model.ValidationRule, error) {
	return p.cfg.ValidationRule.Clone(), nil
}

type rpcBody struct {
	Deployment model.DeploymentSpec `json:"deployment"`
	Components []model.ComponentSpec `json:"components"`
}

func (p *Provider) Get(ctx context.Context, deployment model.DeploymentSpec, references []model.ComponentStep) ([]model.ComponentSpec, error) {
	components := make([]model.ComponentSpec, 0, len(references))
	for _, ref := range references {
		components = append(components, ref.Component)
	}

	body, err := json.Marshal(rpcBody{Deployment: deployment, Components: components})
	if err != nil {
		return nil, fmt.Errorf("uprotocol: failed to serialize get request: %w", err)
	}

	timeout := time.Duration(p.cfg.GetMethodTimeoutMillis) * time.Millisecond
	resp, err := p.transport.Invoke(ctx, p.cfg.GetMethodURI.String(), timeout, body)
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("target provider returned empty response to Get request")
	}

	var result []model.ComponentSpec
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("uprotocol: invalid get response: %w", err)
	}
	return result, nil
}

func (p *Provider) Apply(ctx context.Context, deployment model.DeploymentSpec, step model.DeploymentStep, isDryRun bool) (map[string]model.ComponentResultSpec, error) {
	if isDryRun {
		return map[string]model.ComponentResultSpec{}, nil
	}

	var updates, deletes []model.ComponentSpec
	for _, cs := range step.Components {
		switch cs.Action {
		case model.ActionUpdate:
			updates = append(updates, cs.Component)
		case model.ActionDelete:
			deletes = append(deletes, cs.Component)
		}
	}

	timeout := time.Duration(p.cfg.ApplyMethodTimeoutMillis) * time.Millisecond

	deleteResults, err := p.invokeApply(ctx, p.cfg.DeleteMethodURI, deployment, deletes, timeout)
	if err != nil {
		return nil, err
	}

	updateResults, err := p.invokeApply(ctx, p.cfg.UpdateMethodURI, deployment, updates, timeout)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]model.ComponentResultSpec, len(deleteResults)+len(updateResults))
	for k, v := range deleteResults {
		merged[k] = v
	}
	for k, v := range updateResults {
		merged[k] = v
	}
	return merged, nil
}

// invokeApply issues one DELETE or UPDATE RPC for components, short-
// circuiting to an empty map without issuing any RPC when components is
// empty.
func (p *Provider) invokeApply(ctx context.Context, methodURI uri, deployment model.DeploymentSpec, components []model.ComponentSpec, timeout time.Duration) (map[string]model.ComponentResultSpec, error) {
	if len(components) == 0 {
		return map[string]model.ComponentResultSpec{}, nil
	}

	body, err := json.Marshal(rpcBody{Deployment: deployment, Components: components})
	if err != nil {
		return nil, fmt.Errorf("uprotocol: failed to serialize apply request: %w", err)
	}

	resp, err := p.transport.Invoke(ctx, methodURI.String(), timeout, body)
	if err != nil {
		return nil, err
	}

	var result map[string]model.ComponentResultSpec
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("uprotocol: invalid apply response from %s: %w", methodURI.String(), err)
	}
	return result, nil
}
