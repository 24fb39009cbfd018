// Package pluginhost loads provider shared libraries across a dlopen
// boundary and exposes each loaded provider as a provider.Provider, so the
// rest of the host never has to distinguish a dynamically loaded provider
// from an in-process one.
//
// A provider library is expected to export six C functions sharing the
// flat, opaque-handle convention used by the host's own external ABI (see
// pkg/pluginhost/abi): create_provider, destroy_provider,
// get_validation_rule, get, apply, and free_string. Unifying the two edges
// of the plugin boundary onto one calling convention is a deliberate
// simplification — Go has no ABI-stable trait-object layout to hand across
// a dlopen call the way the reference implementation's vtable pointer
// does, so create_provider returns an opaque handle rather than a fat
// pointer, and every operation is its own exported symbol taking that
// handle as its first argument.
package pluginhost

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/eclipse-symphony/target-provider-go/pkg/model"
	"github.com/eclipse-symphony/target-provider-go/pkg/provider"
)

// hashBypass is the expected-hash sentinel that disables verification.
const hashBypass = "any"

// hashChunkSize bounds how much of a provider library is held in memory at
// once while it is streamed through SHA-256.
const hashChunkSize = 64 * 1024

// VerifyHash computes the SHA-256 digest of the file at path and compares
// it, case-insensitively, against expectedHash. expectedHash == "any"
// (literal, case-sensitive) disables verification entirely.
func VerifyHash(path, expectedHash string) error {
	if expectedHash == hashBypass {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return NewLoadLibraryError(path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, hashChunkSize)); err != nil {
		return NewLoadLibraryError(path, err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if !bytes.EqualFold([]byte(actual), []byte(expectedHash)) {
		return NewHashMismatchError(path, expectedHash, actual)
	}
	return nil
}

// nativeVTable holds the six functions a provider library must export,
// resolved once at load time.
type nativeVTable struct {
	createProvider    func(configJSON *byte) uintptr
	destroyProvider   func(handle uintptr)
	getValidationRule func(handle uintptr) *byte
	get               func(handle uintptr, deploymentJSON, referencesJSON *byte) *byte
	apply             func(handle uintptr, deploymentJSON, stepJSON *byte, isDryRun int32) *byte
	freeString        func(ptr *byte)
}

var vtableSymbols = []string{
	"create_provider",
	"destroy_provider",
	"get_validation_rule",
	"get",
	"apply",
	"free_string",
}

func loadVTable(path string, lib uintptr) (nativeVTable, error) {
	var vt nativeVTable
	for _, name := range vtableSymbols {
		sym, err := purego.Dlsym(lib, name)
		if err != nil {
			return nativeVTable{}, NewSymbolNotFoundError(path, name)
		}
		switch name {
		case "create_provider":
			purego.RegisterFunc(&vt.createProvider, sym)
		case "destroy_provider":
			purego.RegisterFunc(&vt.destroyProvider, sym)
		case "get_validation_rule":
			purego.RegisterFunc(&vt.getValidationRule, sym)
		case "get":
			purego.RegisterFunc(&vt.get, sym)
		case "apply":
			purego.RegisterFunc(&vt.apply, sym)
		case "free_string":
			purego.RegisterFunc(&vt.freeString, sym)
		}
	}
	return vt, nil
}

// nativeProvider adapts a loaded provider library's flat C-ABI to
// provider.Provider.
type nativeProvider struct {
	path   string
	vtable nativeVTable
	handle uintptr
}

var _ provider.Provider = (*nativeProvider)(nil)

func (n *nativeProvider) GetValidationRule(_ context.Context) (model.ValidationRule, error) {
	ptr := n.vtable.getValidationRule(n.handle)
	if ptr == nil {
		return model.ValidationRule{}, &HostError{Stage: "invoke", Message: "get_validation_rule returned null"}
	}
	defer n.vtable.freeString(ptr)

	var rule model.ValidationRule
	if err := json.Unmarshal(cBytes(ptr), &rule); err != nil {
		return model.ValidationRule{}, &HostError{Stage: "deserialize", Message: "invalid validationRule payload", Cause: err}
	}
	return rule, nil
}

func (n *nativeProvider) Get(_ context.Context, deployment model.DeploymentSpec, references []model.ComponentStep) ([]model.ComponentSpec, error) {
	deploymentJSON, err := json.Marshal(deployment)
	if err != nil {
		return nil, &HostError{Stage: "serialize", Message: "invalid deployment", Cause: err}
	}
	referencesJSON, err := json.Marshal(references)
	if err != nil {
		return nil, &HostError{Stage: "serialize", Message: "invalid references", Cause: err}
	}

	dPtr, dBuf := cString(deploymentJSON)
	rPtr, rBuf := cString(referencesJSON)
	_, _ = dBuf, rBuf

	ptr := n.vtable.get(n.handle, dPtr, rPtr)
	if ptr == nil {
		return nil, &HostError{Stage: "invoke", Message: "get returned null"}
	}
	defer n.vtable.freeString(ptr)

	var out []model.ComponentSpec
	if err := json.Unmarshal(cBytes(ptr), &out); err != nil {
		return nil, &HostError{Stage: "deserialize", Message: "invalid get payload", Cause: err}
	}
	return out, nil
}

func (n *nativeProvider) Apply(_ context.Context, deployment model.DeploymentSpec, step model.DeploymentStep, isDryRun bool) (map[string]model.ComponentResultSpec, error) {
	deploymentJSON, err := json.Marshal(deployment)
	if err != nil {
		return nil, &HostError{Stage: "serialize", Message: "invalid deployment", Cause: err}
	}
	stepJSON, err := json.Marshal(step)
	if err != nil {
		return nil, &HostError{Stage: "serialize", Message: "invalid deployment step", Cause: err}
	}

	dPtr, dBuf := cString(deploymentJSON)
	sPtr, sBuf := cString(stepJSON)
	_, _ = dBuf, sBuf

	var dryRun int32
	if isDryRun {
		dryRun = 1
	}

	ptr := n.vtable.apply(n.handle, dPtr, sPtr, dryRun)
	if ptr == nil {
		return nil, &HostError{Stage: "invoke", Message: "apply returned null"}
	}
	defer n.vtable.freeString(ptr)

	out := make(map[string]model.ComponentResultSpec)
	if err := json.Unmarshal(cBytes(ptr), &out); err != nil {
		return nil, &HostError{Stage: "deserialize", Message: "invalid apply payload", Cause: err}
	}
	return out, nil
}

// Handle owns one loaded provider instance — either backed by a
// dynamically loaded library or wrapping an in-process provider.Provider
// directly — and forwards the Provider contract to it. Close releases the
// provider before unloading its library, matching the load protocol's
// release ordering.
type Handle struct {
	mu       sync.Mutex
	prov     provider.Provider
	native   *nativeProvider
	lib      uintptr
	released bool
}

var _ provider.Provider = (*Handle)(nil)

// NewInProcessHandle wraps an in-process provider.Provider — typically
// mock.Provider in tests, or any Go provider composed directly without a
// shared-library round trip — in a Handle with no library to unload.
func NewInProcessHandle(p provider.Provider) *Handle {
	return &Handle{prov: p}
}

// LoadProvider verifies path against expectedHash, dlopens it, resolves
// its exported C-ABI, and constructs one provider instance from
// configJSON. The caller must Close the returned Handle exactly once.
func LoadProvider(path, expectedHash string, configJSON []byte) (*Handle, error) {
	if err := VerifyHash(path, expectedHash); err != nil {
		return nil, err
	}

	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, NewLoadLibraryError(path, err)
	}

	vt, err := loadVTable(path, lib)
	if err != nil {
		_ = purego.Dlclose(lib)
		return nil, err
	}

	cfgPtr, cfgBuf := cString(configJSON)
	_ = cfgBuf

	handle := vt.createProvider(cfgPtr)
	if handle == 0 {
		_ = purego.Dlclose(lib)
		return nil, NewConstructError(path)
	}

	np := &nativeProvider{path: path, vtable: vt, handle: handle}
	return &Handle{prov: np, native: np, lib: lib}, nil
}

func (h *Handle) GetValidationRule(ctx context.Context) (model.ValidationRule, error) {
	return h.prov.GetValidationRule(ctx)
}

func (h *Handle) Get(ctx context.Context, deployment model.DeploymentSpec, references []model.ComponentStep) ([]model.ComponentSpec, error) {
	return h.prov.Get(ctx, deployment, references)
}

func (h *Handle) Apply(ctx context.Context, deployment model.DeploymentSpec, step model.DeploymentStep, isDryRun bool) (map[string]model.ComponentResultSpec, error) {
	return h.prov.Apply(ctx, deployment, step, isDryRun)
}

// Close releases the provider instance, then — if this Handle owns a
// dynamically loaded library — unloads it. It is idempotent.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true

	if h.native != nil {
		h.native.vtable.destroyProvider(h.native.handle)
	}
	if h.lib != 0 {
		return purego.Dlclose(h.lib)
	}
	return nil
}
