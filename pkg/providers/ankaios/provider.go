package ankaios

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eclipse-symphony/target-provider-go/pkg/model"
	"github.com/eclipse-symphony/target-provider-go/pkg/provider"
)

const (
	defaultAgent         = "agent_A"
	defaultRuntime       = "podman"
	defaultRestartPolicy = "NEVER"
	defaultRuntimeConfig = ""
)

// propertyAgent and friends are the enrichment/apply property keys this
// provider round-trips through ComponentSpec.Properties.
const (
	propertyAgent         = "ankaios.agent"
	propertyRuntime       = "ankaios.runtime"
	propertyRestartPolicy = "ankaios.restartPolicy"
	propertyRuntimeConfig = "ankaios.runtimeConfig"
)

// rawConfig is this provider's opaque JSON configuration.
type rawConfig struct {
	SocketPath string `json:"socketPath"`
}

// Provider reconciles components as Ankaios workloads. It always reports
// the default validation rule; custom rules are not honored.
type Provider struct {
	client Client
}

var _ provider.Provider = (*Provider)(nil)

// New constructs a Provider, dialing the Ankaios control socket named by
// the configuration's socketPath.
func New(ctx context.Context, configJSON []byte) (*Provider, error) {
	var cfg rawConfig
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &cfg); err != nil {
			return nil, fmt.Errorf("ankaios: invalid config: %w", err)
		}
	}
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("ankaios: socketPath is required")
	}

	client, err := Dial(ctx, cfg.SocketPath)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

// NewWithClient constructs a Provider from an already-connected Client,
// bypassing socket dialing. Tests use this to inject a fake Client.
func NewWithClient(client Client) *Provider {
	return &Provider{client: client}
}

// Close releases the underlying client connection.
func (p *Provider) Close() error {
	return p.client.Close()
}

func (p *Provider) GetValidationRule(_ context.Context) (model.ValidationRule, error) {
	return model.DefaultValidationRule(), nil
}

// Get fetches the filtered complete state and enriches each matched
// reference with the workload's agent/runtime/restartPolicy/runtimeConfig,
// in input order. References with no matching workload are omitted.
func (p *Provider) Get(ctx context.Context, _ model.DeploymentSpec, references []model.ComponentStep) ([]model.ComponentSpec, error) {
	state, err := p.client.GetState(ctx, []string{"workloadStates", "workloads"})
	if err != nil {
		return nil, fmt.Errorf("ankaios: failed to fetch state: %w", err)
	}

	out := make([]model.ComponentSpec, 0, len(references))
	for _, ref := range references {
		workload, ok := state.Workloads[ref.Component.Name]
		if !ok {
			continue
		}

		comp := ref.Component.Clone()
		if comp.Properties == nil {
			comp.Properties = make(map[string]any)
		}
		comp.Properties[propertyAgent] = workload.Agent
		comp.Properties[propertyRuntime] = workload.Runtime
		comp.Properties[propertyRestartPolicy] = workload.RestartPolicy
		comp.Properties[propertyRuntimeConfig] = workload.RuntimeConfig
		out = append(out, comp)
	}
	return out, nil
}

// Apply deletes or applies one Ankaios workload per component step. Every
// input component produces exactly one result, even on failure.
func (p *Provider) Apply(ctx context.Context, _ model.DeploymentSpec, step model.DeploymentStep, isDryRun bool) (map[string]model.ComponentResultSpec, error) {
	results := make(map[string]model.ComponentResultSpec, len(step.Components))
	if isDryRun {
		return results, nil
	}

	for _, cs := range step.Components {
		name := cs.Component.Name
		switch cs.Action {
		case model.ActionDelete:
			if err := p.client.DeleteWorkload(ctx, name); err != nil {
				results[name] = model.ComponentResultSpec{
					Status:  model.StateInternalError,
					Message: fmt.Sprintf("Failed to delete workload: %v", err),
				}
				continue
			}
			results[name] = model.ComponentResultSpec{Status: model.StateOK, Message: "Component deleted successfully"}

		case model.ActionUpdate:
			workload := workloadFromProperties(cs.Component.Properties)
			if err := p.client.ApplyWorkload(ctx, name, workload); err != nil {
				results[name] = model.ComponentResultSpec{
					Status:  model.StateInternalError,
					Message: fmt.Sprintf("Failed to apply workload: %v", err),
				}
				continue
			}
			results[name] = model.ComponentResultSpec{Status: model.StateOK, Message: "Component applied successfully"}

		default:
			results[name] = model.ComponentResultSpec{Status: model.StateBadRequest, Message: fmt.Sprintf("unsupported action %q", cs.Action)}
		}
	}
	return results, nil
}

// workloadFromProperties builds an Ankaios workload spec from a
// component's properties, falling back to agent_A/podman/NEVER/"" for any
// key that is absent or not a string. An empty-string agent, runtime, or
// restartPolicy also falls back to its default; an empty runtimeConfig is
// kept as given.
func workloadFromProperties(props map[string]any) Workload {
	w := Workload{
		Agent:         defaultAgent,
		Runtime:       defaultRuntime,
		RestartPolicy: defaultRestartPolicy,
		RuntimeConfig: defaultRuntimeConfig,
	}
	if v, ok := props[propertyAgent].(string); ok && v != "" {
		w.Agent = v
	}
	if v, ok := props[propertyRuntime].(string); ok && v != "" {
		w.Runtime = v
	}
	if v, ok := props[propertyRestartPolicy].(string); ok && v != "" {
		w.RestartPolicy = v
	}
	if v, ok := props[propertyRuntimeConfig].(string); ok {
		w.RuntimeConfig = v
	}
	return w
}
