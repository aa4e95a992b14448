package acquire

import "errors"

var (
	// ErrTimeout is returned after retry exhaustion when every attempt
	// timed out.
	ErrTimeout = errors.New("retrieval timed out")

	// ErrTransport is returned after retry exhaustion for non-timeout
	// failures such as bad HTTP status or connection errors.
	ErrTransport = errors.New("retrieval failed")
)
