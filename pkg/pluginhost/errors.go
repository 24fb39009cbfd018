package pluginhost

import "fmt"

// HostError represents a plugin-host failure with actionable context: the
// stage that failed, a message, and the underlying cause.
type HostError struct {
	// Stage indicates where the failure occurred: "verify-hash",
	// "load-library", "resolve-symbol", "construct", "serialize",
	// "deserialize", or "invoke".
	Stage string

	// Message is a human-readable description of the failure.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *HostError) Error() string {
	msg := fmt.Sprintf("%s stage failed: %s", e.Stage, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *HostError) Unwrap() error {
	return e.Cause
}

// HashMismatchError represents a SHA-256 mismatch between the expected
// and actual hash of a provider library.
type HashMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// SymbolNotFoundError represents a missing exported symbol in a provider
// library.
type SymbolNotFoundError struct {
	Path   string
	Symbol string
}

// Error implements the error interface.
func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol %q not found in %s", e.Symbol, e.Path)
}

// NewHashMismatchError creates a HostError wrapping a HashMismatchError.
func NewHashMismatchError(path, expected, actual string) *HostError {
	return &HostError{
		Stage:   "verify-hash",
		Message: "Hash mismatch",
		Cause:   &HashMismatchError{Path: path, Expected: expected, Actual: actual},
	}
}

// NewLoadLibraryError creates a HostError wrapping a library-open failure.
func NewLoadLibraryError(path string, cause error) *HostError {
	return &HostError{
		Stage:   "load-library",
		Message: fmt.Sprintf("failed to open provider library %s", path),
		Cause:   cause,
	}
}

// NewSymbolNotFoundError creates a HostError wrapping a SymbolNotFoundError.
func NewSymbolNotFoundError(path, symbol string) *HostError {
	return &HostError{
		Stage:   "resolve-symbol",
		Message: fmt.Sprintf("failed to resolve symbol %q", symbol),
		Cause:   &SymbolNotFoundError{Path: path, Symbol: symbol},
	}
}

// NewConstructError creates a HostError for a create_provider failure.
func NewConstructError(path string) *HostError {
	return &HostError{
		Stage:   "construct",
		Message: fmt.Sprintf("create_provider returned null for %s", path),
	}
}
