// Package mock provides a reference target provider used by the plugin
// host's own tests and by other providers' test suites as a known-good
// in-process implementation of provider.Provider.
//
// Unlike uprotocol and ankaios, Mock keeps all observed state in memory:
// it is the provider the host exercises without any external dependency,
// matching the "mock provider" row in the system overview table.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/eclipse-symphony/target-provider-go/pkg/model"
	"github.com/eclipse-symphony/target-provider-go/pkg/provider"
)

// Config is the opaque ProviderConfig this provider understands.
type Config struct {
	// ValidationRule optionally overrides the default accept-anything rule.
	ValidationRule *model.ValidationRule `json:"validationRule,omitempty"`

	// FailGet, if true, makes every Get call return an error — used by
	// tests that exercise a provider's Get failure path.
	FailGet bool `json:"failGet,omitempty"`
}

// Provider is an in-memory reference implementation of provider.Provider.
// It tracks applied components by name so Get can echo back what was
// last applied, which is enough to exercise the host's Get/Apply
// plumbing without any real target.
type Provider struct {
	mu    sync.RWMutex
	rule  model.ValidationRule
	state map[string]model.ComponentSpec
	cfg   Config
}

var _ provider.Provider = (*Provider)(nil)
var _ provider.Initializable = (*Provider)(nil)

// New constructs a Provider from its opaque JSON configuration.
func New(configJSON []byte) (*Provider, error) {
	p := &Provider{
		rule:  model.DefaultValidationRule(),
		state: make(map[string]model.ComponentSpec),
	}
	if err := p.Init(configJSON); err != nil {
		return nil, err
	}
	return p, nil
}

// Init (re)applies configuration. It is idempotent: calling it again with
// a different validationRule simply replaces the cached rule.
func (p *Provider) Init(configJSON []byte) error {
	var cfg Config
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &cfg); err != nil {
			return fmt.Errorf("mock: invalid config: %w", err)
		}
	}

	rule := model.DefaultValidationRule()
	if cfg.ValidationRule != nil {
		if err := cfg.ValidationRule.Validate(); err != nil {
			return fmt.Errorf("mock: invalid validationRule: %w", err)
		}
		rule = *cfg.ValidationRule
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	p.rule = rule
	return nil
}

// GetValidationRule returns the rule captured at construction or the last
// Init call.
func (p *Provider) GetValidationRule(_ context.Context) (model.ValidationRule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rule.Clone(), nil
}

// Get returns the last-applied ComponentSpec for each reference that has
// one, preserving input order and dropping references with no recorded
// state, matching the Ankaios provider's documented Get semantics.
func (p *Provider) Get(_ context.Context, _ model.DeploymentSpec, references []model.ComponentStep) ([]model.ComponentSpec, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cfg.FailGet {
		return nil, fmt.Errorf("mock: configured to fail Get")
	}

	out := make([]model.ComponentSpec, 0, len(references))
	for _, ref := range references {
		if comp, ok := p.state[ref.Component.Name]; ok {
			out = append(out, comp.Clone())
		}
	}
	return out, nil
}

// Apply records Update components and forgets Delete components, returning
// one result per input component: StateOK for every Update or Delete, and
// StateBadRequest for any other action. It never fails an Update or
// Delete, which makes it a stable baseline for host tests that need a
// provider which always succeeds.
func (p *Provider) Apply(_ context.Context, _ model.DeploymentSpec, step model.DeploymentStep, isDryRun bool) (map[string]model.ComponentResultSpec, error) {
	results := make(map[string]model.ComponentResultSpec, len(step.Components))

	if isDryRun {
		return results, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, cs := range step.Components {
		name := cs.Component.Name
		switch cs.Action {
		case model.ActionDelete:
			delete(p.state, name)
			results[name] = model.ComponentResultSpec{Status: model.StateOK, Message: "Component deleted successfully"}
		case model.ActionUpdate:
			p.state[name] = cs.Component.Clone()
			results[name] = model.ComponentResultSpec{Status: model.StateOK, Message: "Component applied successfully"}
		default:
			results[name] = model.ComponentResultSpec{Status: model.StateBadRequest, Message: fmt.Sprintf("unsupported action %q", cs.Action)}
		}
	}

	return results, nil
}
