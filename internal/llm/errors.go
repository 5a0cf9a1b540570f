package llm

import (
	"fmt"

	"github.com/jonathan/postsmith/internal/types"
)

// GenerationError is a failed, timed out or empty provider call.
// Message is the provider's own error message when one was returned.
type GenerationError struct {
	Provider ProviderID
	Status   int
	Message  string
	Timeout  bool
	Empty    bool
	Cause    error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Kind implements types.Classified.
func (e *GenerationError) Kind() types.Kind {
	return types.KindGeneration
}

// UnsupportedProviderError reports an unknown provider identifier.
type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q (expected openai or gemini)", e.Provider)
}

// Kind implements types.Classified.
func (e *UnsupportedProviderError) Kind() types.Kind {
	return types.KindUnsupportedProvider
}
