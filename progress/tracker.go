package progress

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/gogpu/modelo/internal/i18n"
)

// Snapshot is a read-only view of a tracker.
type Snapshot struct {
	State      State   `json:"state"`
	Fraction   float64 `json:"fraction"`
	Percent    int     `json:"percent"`
	URL        string  `json:"url,omitempty"`
	BaseURL    string  `json:"baseUrl,omitempty"`
	Attempt    int     `json:"attempt"`
	Generation uint64  `json:"generation"`
	Message    string  `json:"message"`
	Err        error   `json:"-"`
}

// Tracker follows the loading of one model source: it arms a timeout for
// each attempt, records monotonic progress, and decides when a session is
// loaded, failed, or timed out.
//
// Every attempt gets a new generation. The timeout callback carries the
// generation it was armed for and does nothing once that generation is
// superseded, so a timer that fires after cancellation never changes state.
//
// Tracker is safe for concurrent use. Listeners run outside the lock, in
// transition order, and may call back into the tracker.
type Tracker struct {
	clock   Clock
	timeout time.Duration
	bands   Bands
	lang    language.Tag

	mu         sync.Mutex
	state      State
	fraction   float64
	url        string
	baseURL    string
	attempt    int
	generation uint64
	stop       func() bool
	err        error
	lastToken  int64
	closed     bool

	listeners []listener
	nextID    int
	queue     []Snapshot
	notifying bool
}

type listener struct {
	id int
	fn func(Snapshot)
}

// NewTracker returns an Idle tracker.
func NewTracker(opts ...Option) *Tracker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Tracker{
		clock:   o.clock,
		timeout: o.timeout,
		bands:   o.bands,
		lang:    o.lang,
	}
}

// Timeout returns the configured load window.
func (t *Tracker) Timeout() time.Duration { return t.timeout }

// Start begins a fresh session for url: Loading, fraction 0, attempt 1,
// with a new timeout armed and any previous one disarmed.
func (t *Tracker) Start(url string) Snapshot {
	t.mu.Lock()
	if t.closed {
		s := t.snapshotLocked()
		t.mu.Unlock()
		return s
	}
	t.beginLocked(url, url, 1)
	Logger().Info("progress: load started", "url", url, "generation", t.generation)
	s := t.emitLocked()
	t.mu.Unlock()

	t.notify()
	return s
}

// Supersede abandons the current session and starts a fresh one for url.
func (t *Tracker) Supersede(url string) Snapshot {
	t.mu.Lock()
	if t.closed {
		s := t.snapshotLocked()
		t.mu.Unlock()
		return s
	}
	prev, prevGen := t.state, t.generation
	t.beginLocked(url, url, 1)
	Logger().Info("progress: load superseded",
		"url", url, "previous_state", prev, "previous_generation", prevGen,
		"generation", t.generation)
	s := t.emitLocked()
	t.mu.Unlock()

	t.notify()
	return s
}

// CurrentGeneration addresses whichever attempt is current when passed to
// ProgressAt, LoadCompleteAt or ErrorAt. Real generations start at 1.
const CurrentGeneration uint64 = 0

// OnProgress records a progress fraction for the current attempt.
//
// It applies only while Loading or Progressing. NaN and infinities are
// ignored, other values are clamped into [0, 1], and a value below the last
// recorded fraction is ignored. Reaching 1 completes the load.
func (t *Tracker) OnProgress(fraction float64) {
	t.ProgressAt(CurrentGeneration, fraction)
}

// ProgressAt is OnProgress for the attempt with generation gen. Events for
// an attempt that has been superseded or retried are dropped under the same
// lock that orders transitions. It reports whether the event completed the
// load.
func (t *Tracker) ProgressAt(gen uint64, fraction float64) (loaded bool) {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return false
	}
	fraction = min(max(fraction, 0), 1)

	t.mu.Lock()
	if t.staleLocked(gen) || !t.state.active() || fraction < t.fraction {
		t.mu.Unlock()
		return false
	}
	if t.state == Progressing && fraction == t.fraction {
		t.mu.Unlock()
		return false
	}
	if fraction == 1 {
		t.completeLocked()
		loaded = true
	} else {
		t.fraction = fraction
		t.state = Progressing
		t.emitLocked()
	}
	t.mu.Unlock()

	t.notify()
	return loaded
}

// OnLoadComplete marks the current attempt loaded.
// It is a no-op when no load is in flight.
func (t *Tracker) OnLoadComplete() {
	t.LoadCompleteAt(CurrentGeneration)
}

// LoadCompleteAt is OnLoadComplete for the attempt with generation gen.
// It reports whether the attempt moved to Loaded.
func (t *Tracker) LoadCompleteAt(gen uint64) bool {
	t.mu.Lock()
	if t.staleLocked(gen) || !(t.state.active() || t.state == Retrying) {
		t.mu.Unlock()
		return false
	}
	t.completeLocked()
	t.mu.Unlock()

	t.notify()
	return true
}

// OnError fails the current attempt with cause, which is wrapped in
// ErrAssetLoad. It is a no-op when no load is in flight.
func (t *Tracker) OnError(cause error) {
	t.ErrorAt(CurrentGeneration, cause)
}

// ErrorAt is OnError for the attempt with generation gen. It reports whether
// the attempt moved to Errored.
func (t *Tracker) ErrorAt(gen uint64, cause error) bool {
	t.mu.Lock()
	if t.staleLocked(gen) || !(t.state.active() || t.state == Retrying) {
		t.mu.Unlock()
		return false
	}
	t.disarmLocked()
	t.state = Errored
	if cause == nil {
		t.err = ErrAssetLoad
	} else {
		t.err = fmt.Errorf("%w: %w", ErrAssetLoad, cause)
	}
	Logger().Warn("progress: load failed",
		"url", t.url, "attempt", t.attempt, "err", t.err)
	t.emitLocked()
	t.mu.Unlock()

	t.notify()
	return true
}

// Retry starts a new attempt after an error or timeout. The new URL is the
// base URL with a strictly increasing "t" query parameter; the attempt
// count goes up by one. Other states return ErrNotRetryable.
func (t *Tracker) Retry() (Snapshot, error) {
	t.mu.Lock()
	if t.closed || !t.state.Retryable() {
		s := t.snapshotLocked()
		t.mu.Unlock()
		return s, fmt.Errorf("%w: state is %s", ErrNotRetryable, s.State)
	}

	t.state = Retrying
	t.emitLocked()

	url := withToken(t.baseURL, t.nextTokenLocked())
	t.beginLocked(url, t.baseURL, t.attempt+1)
	Logger().Info("progress: retrying",
		"url", url, "attempt", t.attempt, "generation", t.generation)
	s := t.emitLocked()
	t.mu.Unlock()

	t.notify()
	return s, nil
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Generation returns the current session generation. It changes on every
// Start, Supersede, and Retry.
func (t *Tracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// Subscribe registers fn to receive a snapshot after every transition and
// returns a function that removes it.
func (t *Tracker) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, listener{id: id, fn: fn})
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, l := range t.listeners {
			if l.id == id {
				t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close disarms the timer and drops all listeners. Later events are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarmLocked()
	t.closed = true
	t.listeners = nil
	t.queue = nil
}

// beginLocked opens a new attempt and arms its timer.
func (t *Tracker) beginLocked(url, base string, attempt int) {
	t.disarmLocked()
	t.generation++
	t.state = Loading
	t.fraction = 0
	t.url = url
	t.baseURL = base
	t.attempt = attempt
	t.err = nil

	gen := t.generation
	t.stop = t.clock.AfterFunc(t.timeout, func() { t.onTimeout(gen) })
}

// completeLocked moves an in-flight attempt to Loaded.
func (t *Tracker) completeLocked() {
	t.disarmLocked()
	t.state = Loaded
	t.fraction = 1
	Logger().Info("progress: load complete", "url", t.url, "attempt", t.attempt)
	t.emitLocked()
}

// staleLocked reports whether an event addressed to gen must be dropped.
func (t *Tracker) staleLocked(gen uint64) bool {
	if t.closed {
		return true
	}
	if gen != CurrentGeneration && gen != t.generation {
		Logger().Debug("progress: stale event ignored", "generation", gen, "current", t.generation)
		return true
	}
	return false
}

func (t *Tracker) disarmLocked() {
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
}

func (t *Tracker) onTimeout(gen uint64) {
	t.mu.Lock()
	if t.closed || gen != t.generation || !t.state.active() {
		t.mu.Unlock()
		Logger().Debug("progress: stale timeout ignored", "generation", gen)
		return
	}
	t.stop = nil
	t.state = TimedOut
	t.err = fmt.Errorf("%w after %s", ErrLoadTimeout, t.timeout)
	Logger().Warn("progress: load timed out",
		"url", t.url, "attempt", t.attempt, "timeout", t.timeout)
	t.emitLocked()
	t.mu.Unlock()

	t.notify()
}

// nextTokenLocked returns a millisecond timestamp, bumped past the last
// token when the clock has not moved.
func (t *Tracker) nextTokenLocked() int64 {
	tok := t.clock.Now().UnixMilli()
	if tok <= t.lastToken {
		tok = t.lastToken + 1
	}
	t.lastToken = tok
	return tok
}

// withToken appends t=<token> to the query of rawURL, before any fragment.
func withToken(rawURL string, token int64) string {
	base, frag, hasFrag := strings.Cut(rawURL, "#")
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			sep = ""
		}
	}
	u := base + sep + "t=" + strconv.FormatInt(token, 10)
	if hasFrag {
		u += "#" + frag
	}
	return u
}

func (t *Tracker) snapshotLocked() Snapshot {
	pct := int(math.Round(t.fraction * 100))
	return Snapshot{
		State:      t.state,
		Fraction:   t.fraction,
		Percent:    pct,
		URL:        t.url,
		BaseURL:    t.baseURL,
		Attempt:    t.attempt,
		Generation: t.generation,
		Message:    t.messageLocked(pct),
		Err:        t.err,
	}
}

func (t *Tracker) messageLocked(pct int) string {
	switch t.state {
	case Loading, Progressing:
		return t.bands.Message(t.lang, pct)
	case Loaded:
		return i18n.Sprintf(t.lang, i18n.KeyLoaded)
	case Errored:
		return i18n.Sprintf(t.lang, i18n.KeyLoadError)
	case TimedOut:
		return i18n.Sprintf(t.lang, i18n.KeyTimeout)
	case Retrying:
		return i18n.Sprintf(t.lang, i18n.KeyRetrying)
	default:
		return i18n.Sprintf(t.lang, i18n.KeyStarting)
	}
}

// emitLocked queues the current snapshot for listeners and returns it.
func (t *Tracker) emitLocked() Snapshot {
	s := t.snapshotLocked()
	if len(t.listeners) > 0 {
		t.queue = append(t.queue, s)
	}
	return s
}

// notify delivers queued snapshots. Only one goroutine delivers at a time,
// which keeps delivery in transition order; a transition made from inside a
// listener is queued and delivered by the same loop.
func (t *Tracker) notify() {
	t.mu.Lock()
	if t.notifying {
		t.mu.Unlock()
		return
	}
	t.notifying = true
	for len(t.queue) > 0 {
		s := t.queue[0]
		t.queue = t.queue[1:]
		ls := append([]listener(nil), t.listeners...)
		t.mu.Unlock()
		for _, l := range ls {
			l.fn(s)
		}
		t.mu.Lock()
	}
	t.notifying = false
	t.mu.Unlock()
}
