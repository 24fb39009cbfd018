// Package provider defines the internal target provider contract
// (ITargetProvider) that every concrete provider — mock, uProtocol,
// Ankaios, or any future one — implements directly, in-process.
//
// The C-ABI in pkg/pluginhost/abi is a thin adapter over this interface,
// not the other way around: new providers ship as Go types implementing
// Provider, and only need a cgo export shim if they must be loadable as a
// standalone shared library by a non-Go host. Tests and in-process
// composition skip the shared-library path entirely and call a Provider
// directly, per the plugin-loading-vs-in-process-implementations design
// note.
package provider

import (
	"context"

	"github.com/eclipse-symphony/target-provider-go/pkg/model"
)

// Provider is the three required operations every target provider
// implements; the optional fourth, Init, is Initializable. Get and Apply must be safe for concurrent invocation on one
// Provider value; GetValidationRule must be safe for concurrent read.
type Provider interface {
	// GetValidationRule returns the rule describing which component
	// shapes this provider accepts. It is pure — no I/O — and the
	// returned value must be the same (by value) on every call within a
	// process lifetime.
	GetValidationRule(ctx context.Context) (model.ValidationRule, error)

	// Get reads remote or observed state and returns a subset of
	// references, in input order, enriched with provider-specific
	// properties. It must not introduce component names absent from
	// references.
	Get(ctx context.Context, deployment model.DeploymentSpec, references []model.ComponentStep) ([]model.ComponentSpec, error)

	// Apply idempotently reconciles step against the target. It returns
	// exactly one result per component present in step.Components, keyed
	// by component name. When isDryRun is true it returns an empty map
	// without performing any side effect.
	Apply(ctx context.Context, deployment model.DeploymentSpec, step model.DeploymentStep, isDryRun bool) (map[string]model.ComponentResultSpec, error)
}

// Initializable is an optional extra a Provider may implement: a second
// idempotent configuration pass distinct from construction. Nothing in
// pkg/pluginhost calls Init (the plugin ABI has no init entry point); a
// caller holding a Provider may reach it with a type assertion. A provider
// that folds all configuration into its constructor need not implement it.
type Initializable interface {
	Init(config []byte) error
}
