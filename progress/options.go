package progress

import (
	"time"

	"golang.org/x/text/language"
)

// DefaultTimeout is the load window used when WithTimeout is not given.
const DefaultTimeout = 20 * time.Second

// Option configures a Tracker.
type Option func(*trackerOptions)

type trackerOptions struct {
	clock   Clock
	timeout time.Duration
	bands   Bands
	lang    language.Tag
}

func defaultOptions() trackerOptions {
	return trackerOptions{
		clock:   SystemClock{},
		timeout: DefaultTimeout,
		bands:   ViewerBands,
		lang:    language.English,
	}
}

// WithClock sets the clock used for timers and retry tokens.
func WithClock(c Clock) Option {
	return func(o *trackerOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithTimeout sets the load window. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *trackerOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBands sets the percentage-to-message bands. Bands that fail
// Validate are ignored.
func WithBands(b Bands) Option {
	return func(o *trackerOptions) {
		if err := b.Validate(); err != nil {
			Logger().Warn("progress: ignoring bands", "err", err)
			return
		}
		o.bands = b
	}
}

// WithLanguage sets the language of snapshot messages.
func WithLanguage(tag language.Tag) Option {
	return func(o *trackerOptions) {
		o.lang = tag
	}
}
