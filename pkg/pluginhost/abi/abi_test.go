package abi

/*
#include <stdlib.h>
*/
import "C"

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestGuarded_RecoversPanic(t *testing.T) {
	result := guarded(func() *C.char {
		panic("boom")
	})
	assert.Nil(t, result)
}

func TestGuarded_PassesThroughSuccess(t *testing.T) {
	want := C.CString("ok")
	defer C.free(unsafe.Pointer(want))

	result := guarded(func() *C.char {
		return want
	})
	assert.Equal(t, C.GoString(want), C.GoString(result))
}

func TestCreateProviderInstance_UnknownPathReturnsZeroToken(t *testing.T) {
	path := C.CString("/nonexistent/provider.so")
	hash := C.CString("any")
	cfg := C.CString("{}")
	defer C.free(unsafe.Pointer(path))
	defer C.free(unsafe.Pointer(hash))
	defer C.free(unsafe.Pointer(cfg))

	token := create_provider_instance(path, hash, cfg)
	assert.Zero(t, token)
}

func TestDestroyProviderInstance_UnknownTokenIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		destroy_provider_instance(C.ulonglong(999999))
	})
}

func TestGetValidationRule_UnknownTokenReturnsNull(t *testing.T) {
	resultPtr := get_validation_rule(C.ulonglong(999999))
	assert.Nil(t, resultPtr)
}

func TestGet_UnknownTokenReturnsNull(t *testing.T) {
	deployment := C.CString("{}")
	references := C.CString("[]")
	defer C.free(unsafe.Pointer(deployment))
	defer C.free(unsafe.Pointer(references))

	resultPtr := get(C.ulonglong(999999), deployment, references)
	assert.Nil(t, resultPtr)
}

func TestApply_UnknownTokenReturnsNull(t *testing.T) {
	deployment := C.CString("{}")
	step := C.CString("{}")
	defer C.free(unsafe.Pointer(deployment))
	defer C.free(unsafe.Pointer(step))

	resultPtr := apply(C.ulonglong(999999), deployment, step, 0)
	assert.Nil(t, resultPtr)
}
