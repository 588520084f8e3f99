package modelo

import (
	"golang.org/x/text/language"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/internal/loader"
	"github.com/gogpu/modelo/progress"
	"github.com/gogpu/modelo/viewer"
)

// Option configures a Shell during creation.
//
// Example:
//
//	// Detect over the registered probers, default tracker
//	sh := modelo.New(el)
//
//	// Fixed descriptor and a 45s load window
//	sh := modelo.New(el,
//	    modelo.WithDescriptor(desc),
//	    modelo.WithTrackerOptions(progress.WithTimeout(45*time.Second)))
type Option func(*shellOptions)

type shellOptions struct {
	detector    *capability.Detector
	descriptor  *capability.Descriptor
	controls    viewer.ControlsConfig
	trackerOpts []progress.Option
	loader      *loader.Loader
	lang        language.Tag
}

func defaultOptions() shellOptions {
	return shellOptions{
		controls: viewer.ControlsConfig{AutoRotate: true},
		lang:     language.English,
	}
}

// WithDetector sets the detector Init runs. The default detects over the
// registered probers.
func WithDetector(d *capability.Detector) Option {
	return func(o *shellOptions) {
		o.detector = d
	}
}

// WithDescriptor skips detection and uses d, e.g. a tier reported by the
// browser or read from the preference cache.
func WithDescriptor(d capability.Descriptor) Option {
	return func(o *shellOptions) {
		o.descriptor = &d
	}
}

// WithControls sets the initial rotation and camera configuration.
func WithControls(cfg viewer.ControlsConfig) Option {
	return func(o *shellOptions) {
		o.controls = cfg
	}
}

// WithTrackerOptions configures the load tracker.
func WithTrackerOptions(opts ...progress.Option) Option {
	return func(o *shellOptions) {
		o.trackerOpts = append(o.trackerOpts, opts...)
	}
}

// WithLoader sets the loader used by Fetch.
func WithLoader(l *loader.Loader) Option {
	return func(o *shellOptions) {
		o.loader = l
	}
}

// WithLanguage sets the language of status and progress messages.
func WithLanguage(tag language.Tag) Option {
	return func(o *shellOptions) {
		o.lang = tag
		o.trackerOpts = append(o.trackerOpts, progress.WithLanguage(tag))
	}
}
