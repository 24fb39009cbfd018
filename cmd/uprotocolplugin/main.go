// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main builds the uProtocol target provider as a loadable shared
// library, exporting the flat C-ABI pkg/pluginhost expects: create_provider,
// destroy_provider, get_validation_rule, get, apply, and free_string.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"encoding/json"
	"sync"
	"unsafe"

	"github.com/eclipse-symphony/target-provider-go/pkg/model"
	"github.com/eclipse-symphony/target-provider-go/pkg/providers/uprotocol"
)

var (
	mu        sync.Mutex
	instances = make(map[uintptr]*uprotocol.Provider)
	nextID    uintptr
)

func cString(b []byte) *C.char {
	return (*C.char)(C.CBytes(append(b, 0)))
}

//export create_provider
func create_provider(configJSON *C.char) C.uintptr_t {
	p, err := uprotocol.New(context.Background(), []byte(C.GoString(configJSON)))
	if err != nil {
		return 0
	}

	mu.Lock()
	defer mu.Unlock()
	nextID++
	instances[nextID] = p
	return C.uintptr_t(nextID)
}

//export destroy_provider
func destroy_provider(handle C.uintptr_t) {
	mu.Lock()
	p, ok := instances[uintptr(handle)]
	delete(instances, uintptr(handle))
	mu.Unlock()

	if ok {
		_ = p.Close()
	}
}

func lookup(handle C.uintptr_t) (*uprotocol.Provider, bool) {
	mu.Lock()
	defer mu.Unlock()
	p, ok := instances[uintptr(handle)]
	return p, ok
}

//export get_validation_rule
func get_validation_rule(handle C.uintptr_t) *C.char {
	p, ok := lookup(handle)
	if !ok {
		return nil
	}
	rule, err := p.GetValidationRule(context.Background())
	if err != nil {
		return nil
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return nil
	}
	return cString(data)
}

//export get
func get(handle C.uintptr_t, deploymentJSON, referencesJSON *C.char) *C.char {
	p, ok := lookup(handle)
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

	components, err := p.Get(context.Background(), deployment, references)
	if err != nil {
		return nil
	}
	data, err := json.Marshal(components)
	if err != nil {
		return nil
	}
	return cString(data)
}

//export apply
func apply(handle C.uintptr_t, deploymentJSON, stepJSON *C.char, isDryRun C.int) *C.char {
	p, ok := lookup(handle)
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

	results, err := p.Apply(context.Background(), deployment, step, isDryRun != 0)
	if err != nil {
		return nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return nil
	}
	return cString(data)
}

//export free_string
func free_string(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func main() {}
