package videofx

import "errors"

// Sentinel errors for videofx operations.
// These errors enable reliable error classification using errors.Is().

// Factory errors.
var (
	// ErrUnsupportedDescriptor indicates the runtime lacks a capability the
	// descriptor requires. Not retryable; a UI should disable the option.
	ErrUnsupportedDescriptor = errors.New("descriptor not supported on this runtime")
)

// Processor lifecycle errors. These indicate caller misuse and are never
// retried internally.
var (
	// ErrAlreadyBound indicates the processor is bound to a different track.
	ErrAlreadyBound = errors.New("processor already bound to another track")

	// ErrDisposed indicates the processor has been disposed.
	ErrDisposed = errors.New("processor is disposed")
)

// Controller errors.
var (
	// ErrTrackUnavailable indicates enabling the camera track failed.
	// Retryable by user action.
	ErrTrackUnavailable = errors.New("track unavailable")

	// ErrTransformDegraded indicates the per-frame transform kept failing
	// past the configured threshold and the processor detached itself.
	// Surfaced once, never per frame.
	ErrTransformDegraded = errors.New("transform degraded")
)

// Descriptor errors.
var (
	// ErrMalformedDescriptor indicates a serialized descriptor could not be
	// decoded. Rejected whole; never partially applied.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
)
