package progress

import "errors"

var (
	// ErrLoadTimeout is set on a session that saw no completion, error or
	// full progress within the configured timeout.
	ErrLoadTimeout = errors.New("progress: load timed out")

	// ErrAssetLoad wraps the failure reported by the viewer or loader.
	ErrAssetLoad = errors.New("progress: asset failed to load")

	// ErrNotRetryable is returned by Retry outside Errored and TimedOut.
	ErrNotRetryable = errors.New("progress: session is not retryable")

	// ErrInvalidBands is returned by Bands.Validate.
	ErrInvalidBands = errors.New("progress: invalid message bands")
)
