package capability

import "errors"

// ErrBackendUnavailable is reported by probers whose backend cannot be
// initialized. Detect recovers from it by falling through to the next tier;
// it is never returned to Detect's caller.
var ErrBackendUnavailable = errors.New("capability: backend not available")
