package domain

import (
	"errors"
	"fmt"
)

// ErrRetrievalUnavailable means no knowledge base exists (index missing or
// uninitialized). The query must fail without calling any backend.
var ErrRetrievalUnavailable = errors.New("knowledge base unavailable")

// BackendUnavailableError means the selected backend cannot be used because its
// credentials are missing. It is a configuration error, raised before any
// network call.
type BackendUnavailableError struct {
	Backend string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: missing credentials", e.Backend)
}

// SynthesisError wraps a failed backend call. The query fails as a whole: no
// partial answer, no retry.
type SynthesisError struct {
	Backend string
	Err     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis with %s failed: %v", e.Backend, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
