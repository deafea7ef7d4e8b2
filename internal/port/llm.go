package port

import (
	"context"

	"docqa/internal/domain"
)

// Generator is an interchangeable hosted LLM generation capability. Concrete
// backends adapt their native call shape to this interface; backends that do
// not report token usage leave Generation.Usage nil.
type Generator interface {
	// Generate sends the rendered prompt as the user turn and returns the
	// raw response.
	Generate(ctx context.Context, prompt string) (domain.Generation, error)

	// Configured reports whether the backend has the credentials it needs.
	// It must not perform any network call.
	Configured() error

	// Name returns the backend's display name.
	Name() string
}
