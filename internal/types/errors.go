package types

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the calling surface.
type Kind string

const (
	// KindPrecondition is a missing or invalid required input (URL, credential, article text).
	KindPrecondition Kind = "precondition"
	// KindFetch is a failed page load or remote article fetch.
	KindFetch Kind = "fetch"
	// KindGeneration is a failed, timed out or empty provider response.
	KindGeneration Kind = "generation"
	// KindUnsupportedProvider is an unrecognized provider identifier.
	KindUnsupportedProvider Kind = "unsupported_provider"
	// KindInternal is anything else.
	KindInternal Kind = "internal"
)

// Classified is implemented by every error of the failure taxonomy.
type Classified interface {
	error
	Kind() Kind
}

// PreconditionError reports a required input that is missing or invalid.
// It is raised before any network call is attempted.
type PreconditionError struct {
	Field   string
	Message string
}

// NewPreconditionError builds a PreconditionError for field with a formatted message.
func NewPreconditionError(field, format string, args ...any) *PreconditionError {
	return &PreconditionError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// Kind implements Classified.
func (e *PreconditionError) Kind() Kind {
	return KindPrecondition
}

// Classify returns the Kind of the first classified error in err's chain.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var c Classified
	if errors.As(err, &c) {
		return c.Kind()
	}
	return KindInternal
}

// Message returns the human-readable message of the first classified error in err's chain,
// without the wrapping context added on the way up.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var c Classified
	if errors.As(err, &c) {
		return c.Error()
	}
	return err.Error()
}
