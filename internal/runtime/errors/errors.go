// Package errors defines the error taxonomy shared by all coaty runtime
// packages. Callers classify failures with errors.Is against the exported
// sentinels; call sites add context with fmt.Errorf("...: %w", err).
package errors

import sterrors "errors"

var (
	// ErrMalformedTopic reports a topic string that does not match the
	// fixed five-level wire format, carries an unknown event type token,
	// or holds a source object id that is not a UUID.
	ErrMalformedTopic = sterrors.New("coaty: malformed topic")

	// ErrDecodingFailure reports a payload that could not be resolved to
	// any registered or built-in object shape, or that failed the
	// structural JSON decode.
	ErrDecodingFailure = sterrors.New("coaty: payload decoding failed")

	// ErrInvalidArgument reports an incomplete or contradictory event
	// envelope passed to a publish operation.
	ErrInvalidArgument = sterrors.New("coaty: invalid argument")

	// ErrInvalidConfiguration reports container-level misuse, for example
	// registering a controller under a name that is already taken.
	ErrInvalidConfiguration = sterrors.New("coaty: invalid configuration")
)

var (
	ErrManagerRequired    = sterrors.New("coaty: communication manager is required")
	ErrNotStarted         = sterrors.New("coaty: communication manager is not started")
	ErrAlreadyStarted     = sterrors.New("coaty: communication manager is already started")
	ErrConfigRequired     = sterrors.New("coaty: configuration is required")
	ErrLoggerRequired     = sterrors.New("coaty: logger is required")
	ErrControllerRequired = sterrors.New("coaty: controller factory is required")
	ErrObjectRequired     = sterrors.New("coaty: event object is required")
	ErrTokenRequired      = sterrors.New("coaty: correlation token is required")
)
