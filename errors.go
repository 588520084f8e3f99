package modelo

import "errors"

// ErrSuperseded is returned by Fetch when another source replaced the
// attempt before its download finished.
var ErrSuperseded = errors.New("modelo: load superseded")
