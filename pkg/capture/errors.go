package capture

import (
	"errors"
)

// Sentinel errors for the capture package.
var (
	// ErrOpenFailed indicates the requested source could not be opened.
	ErrOpenFailed = errors.New("capture: failed to open source")

	// ErrReadFailed indicates an open source stopped yielding frames
	// (end of stream, disconnect, or decode error; not distinguished).
	ErrReadFailed = errors.New("capture: failed to read frame")

	// ErrClosed indicates an operation on a closed device handle.
	ErrClosed = errors.New("capture: device closed")

	// ErrUnsupportedBackend indicates an unknown backend name.
	ErrUnsupportedBackend = errors.New("capture: unsupported backend")
)
