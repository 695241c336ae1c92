package intent

import "errors"

// Domain-specific errors for the intent package.
var (
	// ErrEmptyInput means there was nothing to classify.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrUnclassifiable means the classification service returned an
	// ambiguous or undecodable result. Surfaced as an error rather than
	// silently filing the input as a saved fact: misfiling a reminder as a
	// memory is a worse failure mode than an explicit retry prompt.
	ErrUnclassifiable = errors.New("could not classify intent")

	// ErrUnparseableDate means a reminder or calendar intent carried a date
	// the parser could not resolve. Never silently dropped or defaulted.
	ErrUnparseableDate = errors.New("unparseable date in intent")
)
