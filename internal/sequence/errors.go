package sequence

import "errors"

// Sentinel errors classifying step failures. Only dependency, dynamic field,
// and exhausted request errors reach a step's failure state; condition errors
// degrade to a skip and extraction failures are swallowed per key.
var (
	// ErrDependency marks a declared dependency that is missing from the
	// results or failed. The step aborts before any request is made.
	ErrDependency = errors.New("dependency failed or not executed")

	// ErrDynamicField marks a header/param/body function that failed.
	ErrDynamicField = errors.New("dynamic field resolution failed")

	// ErrRequest marks a network failure or non-2xx response, surfaced
	// after the retry budget is exhausted.
	ErrRequest = errors.New("request failed")

	// ErrUnsupportedMethod marks a method other than GET or POST.
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")

	// ErrInvalidURL marks a request URL that is not absolute after
	// interpolation.
	ErrInvalidURL = errors.New("invalid request URL")
)
