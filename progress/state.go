package progress

// State is a load-session state.
type State int

// Session states.
const (
	Idle State = iota
	Loading
	Progressing
	Loaded
	Errored
	TimedOut
	Retrying
)

var stateNames = [...]string{
	Idle:        "idle",
	Loading:     "loading",
	Progressing: "progressing",
	Loaded:      "loaded",
	Errored:     "errored",
	TimedOut:    "timed-out",
	Retrying:    "retrying",
}

// String returns the state name.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether the session has ended. Errored and TimedOut end
// the session until Retry is called.
func (s State) Terminal() bool {
	return s == Loaded || s == Errored || s == TimedOut
}

// Retryable reports whether Retry is allowed from s.
func (s State) Retryable() bool {
	return s == Errored || s == TimedOut
}

// active reports whether a load is in flight and its timer armed.
func (s State) active() bool {
	return s == Loading || s == Progressing
}
