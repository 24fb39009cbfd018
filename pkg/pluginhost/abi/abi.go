// Package abi is the cgo C-ABI the host exposes to an external,
// non-Go orchestrator when the host process itself is embedded as a
// shared library rather than run standalone. It is a thin JSON-in/
// JSON-out wrapper around pluginhost.Handle with no business logic of its
// own: every exported function recovers from panics at the boundary so a
// bug here never unwinds into the calling process, and every call either
// returns a heap-allocated, NUL-terminated JSON string the caller must
// release with free_string, or null on any failure — construction,
// serialization, deserialization, and provider errors are all
// indistinguishable at this boundary, matching §4.2's load and forwarding
// protocol exactly.
package abi

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eclipse-symphony/target-provider-go/pkg/metrics"
	"github.com/eclipse-symphony/target-provider-go/pkg/model"
	"github.com/eclipse-symphony/target-provider-go/pkg/pluginhost"
)

// instance pairs a loaded handle with the provider path it was loaded
// from, used only as the metrics label for operations invoked through
// this instance's token.
type instance struct {
	handle *pluginhost.Handle
	path   string
}

var (
	mu        sync.Mutex
	instances = make(map[uint64]*instance)
	nextToken uint64

	// hostMetrics records every operation forwarded through this ABI,
	// labeled by provider path, on a registry private to this package —
	// a caller embedding this library reads it however it reads any other
	// Prometheus registry in its own process.
	hostMetrics = metrics.NewHost(prometheus.NewRegistry())
)

// observe times fn and records its outcome against hostMetrics under
// operation, keyed by the provider path token resolves to.
func observe(token C.ulonglong, operation string, fn func() error) {
	mu.Lock()
	inst, ok := instances[uint64(token)]
	mu.Unlock()
	if !ok {
		fn()
		return
	}

	start := time.Now()
	err := fn()
	hostMetrics.ObserveOperation(inst.path, operation, err, time.Since(start))
}

func cString(b []byte) *C.char {
	return (*C.char)(C.CBytes(append(b, 0)))
}

// guarded runs fn and converts any panic into a nil result, so a bug in
// the host never crosses the C boundary as an unwinding panic.
func guarded(fn func() *C.char) (result *C.char) {
	defer func() {
		if recover() != nil {
			result = nil
		}
	}()
	return fn()
}

func lookup(token C.ulonglong) (*instance, bool) {
	mu.Lock()
	defer mu.Unlock()
	inst, ok := instances[uint64(token)]
	return inst, ok
}

// create_provider_instance loads, verifies, and constructs a provider per
// §4.2's load protocol, returning an opaque non-zero token standing in
// for *mut ProviderHandle (Go values cannot be handed across cgo as real
// pointers without pinning). 0 signals any failure: hash mismatch,
// missing library, missing symbol, or a null return from the provider's
// own create_provider.
//
//export create_provider_instance
func create_provider_instance(path, expectedHash, configJSON *C.char) C.ulonglong {
	var token uint64
	func() {
		defer func() { recover() }()
		goPath := C.GoString(path)
		h, err := pluginhost.LoadProvider(goPath, C.GoString(expectedHash), []byte(C.GoString(configJSON)))
		if err != nil {
			hostMetrics.ProviderLoadFailures.WithLabelValues(stageOf(err)).Inc()
			return
		}
		hostMetrics.ProviderLoadsTotal.Inc()

		mu.Lock()
		defer mu.Unlock()
		nextToken++
		token = nextToken
		instances[token] = &instance{handle: h, path: goPath}
	}()
	return C.ulonglong(token)
}

// stageOf extracts the failure stage from a pluginhost.HostError, falling
// back to "unknown" for any other error type.
func stageOf(err error) string {
	var hostErr *pluginhost.HostError
	if errors.As(err, &hostErr) {
		return hostErr.Stage
	}
	return "unknown"
}

// destroy_provider_instance releases the handle named by token. It is a
// no-op on an unknown or zero token, matching §6's "no-op on null".
//
//export destroy_provider_instance
func destroy_provider_instance(token C.ulonglong) {
	defer func() { recover() }()

	mu.Lock()
	inst, ok := instances[uint64(token)]
	delete(instances, uint64(token))
	mu.Unlock()

	if ok {
		_ = inst.handle.Close()
	}
}

//export get_validation_rule
func get_validation_rule(token C.ulonglong) *C.char {
	return guarded(func() *C.char {
		inst, ok := lookup(token)
		if !ok {
			return nil
		}

		var result *C.char
		observe(token, "GetValidationRule", func() error {
			rule, err := inst.handle.GetValidationRule(context.Background())
			if err != nil {
				return err
			}
			data, err := json.Marshal(rule)
			if err != nil {
				return err
			}
			result = cString(data)
			return nil
		})
		return result
	})
}

//export get
func get(token C.ulonglong, deploymentJSON, referencesJSON *C.char) *C.char {
	return guarded(func() *C.char {
		inst, ok := lookup(token)
		if !ok {
			return nil
		}

		var deployment model.DeploymentSpec
		if err := json.Unmarshal([]byte(C.GoString(deploymentJSON)), &deployment); err != nil {
			return nil
		}
		var references []model.ComponentStep
		if err := json.Unmarshal([]byte(C.GoString(referencesJSON)), &references); err != nil {
			return nil
		}

		var result *C.char
		observe(token, "Get", func() error {
			components, err := inst.handle.Get(context.Background(), deployment, references)
			if err != nil {
				return err
			}
			data, err := json.Marshal(components)
			if err != nil {
				return err
			}
			result = cString(data)
			return nil
		})
		return result
	})
}

//export apply
func apply(token C.ulonglong, deploymentJSON, stepJSON *C.char, isDryRun C.int) *C.char {
	return guarded(func() *C.char {
		inst, ok := lookup(token)
		if !ok {
			return nil
		}

		var deployment model.DeploymentSpec
		if err := json.Unmarshal([]byte(C.GoString(deploymentJSON)), &deployment); err != nil {
			return nil
		}
		var step model.DeploymentStep
		if err := json.Unmarshal([]byte(C.GoString(stepJSON)), &step); err != nil {
			return nil
		}

		var result *C.char
		observe(token, "Apply", func() error {
			results, err := inst.handle.Apply(context.Background(), deployment, step, isDryRun != 0)
			if err != nil {
				return err
			}
			data, err := json.Marshal(results)
			if err != nil {
				return err
			}
			result = cString(data)
			return nil
		})
		return result
	})
}

//export free_string
func free_string(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}
