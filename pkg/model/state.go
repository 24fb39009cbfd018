package model

import (
	"encoding/json"
	"fmt"
)

// State is a fixed code set describing the outcome of a component
// operation. It spans HTTP-ish codes, configuration/serialization/IO
// sub-ranges, operation outcomes, workflow states, and detailed failure
// codes. The set is append-only for wire stability: a client that does not
// recognize a code must degrade to StateInternalError.
type State uint16

const (
	StateOK                  State = 200
	StateAccepted            State = 202
	StateBadRequest          State = 400
	StateForbidden           State = 403
	StateNotFound            State = 404
	StateMethodNotAllowed    State = 405
	StateConflict            State = 409
	StateInternalError       State = 500
	StateConfigError         State = 1000
	StateSerializationError  State = 1001
	StateIOError             State = 1002
	StateValidationError     State = 1003
	StateTimeoutError        State = 2000
	StateUnsupportedError    State = 3000
	StateOutOfScopeError     State = 4000
	StateUninitialized       State = 5001
	StateUpdateFailed        State = 8001
	StateDeleteFailed        State = 8002
	StateCreateFailed        State = 8003
	StateGetFailed           State = 8004
	StateApplyFailed         State = 8005
	StateWaiting             State = 9994
	StateRunning             State = 9995
	StatePaused              State = 9996
	StateSucceeded           State = 9997
	StateDelayed             State = 9998
	StateDone                State = 9999
	StateDeleteFailedDetail  State = 10000
	StateUpdateFailedDetail  State = 11000
	StateGenericFailedDetail State = 12000
)

// knownStates is the append-only table backing the bidirectional u16<->State
// mapping. Entries are never removed or renumbered, only added.
var knownStates = map[uint16]State{
	200:   StateOK,
	202:   StateAccepted,
	400:   StateBadRequest,
	403:   StateForbidden,
	404:   StateNotFound,
	405:   StateMethodNotAllowed,
	409:   StateConflict,
	500:   StateInternalError,
	1000:  StateConfigError,
	1001:  StateSerializationError,
	1002:  StateIOError,
	1003:  StateValidationError,
	2000:  StateTimeoutError,
	3000:  StateUnsupportedError,
	4000:  StateOutOfScopeError,
	5001:  StateUninitialized,
	8001:  StateUpdateFailed,
	8002:  StateDeleteFailed,
	8003:  StateCreateFailed,
	8004:  StateGetFailed,
	8005:  StateApplyFailed,
	9994:  StateWaiting,
	9995:  StateRunning,
	9996:  StatePaused,
	9997:  StateSucceeded,
	9998:  StateDelayed,
	9999:  StateDone,
	10000: StateDeleteFailedDetail,
	11000: StateUpdateFailedDetail,
	12000: StateGenericFailedDetail,
}

// FromUint16 maps a wire integer to a State, degrading any code outside the
// known table to StateInternalError rather than failing.
func FromUint16(v uint16) State {
	if s, ok := knownStates[v]; ok {
		return s
	}
	return StateInternalError
}

// IntoUint16 returns the wire integer for s.
func IntoUint16(s State) uint16 {
	return uint16(s)
}

// MarshalJSON encodes State as its bare integer value.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint16(s))
}

// UnmarshalJSON decodes a bare integer into State, degrading unknown codes
// to StateInternalError per the wire-stability contract.
func (s *State) UnmarshalJSON(data []byte) error {
	var v uint16
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	*s = FromUint16(v)
	return nil
}

// ComponentResultSpec is the outcome of one component operation.
type ComponentResultSpec struct {
	// Status is the outcome code.
	Status State `json:"status"`

	// Message is a human-readable detail string.
	Message string `json:"message"`
}
