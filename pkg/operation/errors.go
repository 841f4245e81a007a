package operation

import "errors"

var (
	// ErrTransportFailure matches any *Error of kind transport via errors.Is.
	ErrTransportFailure = errors.New("operation: transport failure")
	// ErrBackendRejection matches any *Error of kind backend via errors.Is.
	ErrBackendRejection = errors.New("operation: backend rejected the request")

	ErrNoResponse    = errors.New("operation: transport returned neither response nor error")
	ErrDecodePayload = errors.New("operation: failed to decode response payload")
	ErrPanic         = errors.New("operation: panicked")
	ErrInvalidPolicy = errors.New("operation: invalid policy")
	ErrUnknownKind   = errors.New("operation: unknown kind")
)
