package babel

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or turn sequence failed validation.
	ErrValidation = errors.New("validation error")

	// ErrEmptyMessage indicates a submission with no text to translate.
	ErrEmptyMessage = errors.New("empty message")

	// ErrTooFewLanguages indicates a language set below the two-language floor.
	ErrTooFewLanguages = errors.New("at least two languages are required")

	// ErrTranslation indicates the provider failed while producing a translation.
	ErrTranslation = errors.New("translation error")

	// ErrStreamNotReady indicates Reply() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
