package modelo

import (
	"context"
	"io"
	"sync"

	"golang.org/x/text/language"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/internal/loader"
	"github.com/gogpu/modelo/progress"
	"github.com/gogpu/modelo/quality"
	"github.com/gogpu/modelo/viewer"
)

// Shell wires capability detection, the quality policy, the viewer
// controls and the load tracker around one viewer element.
//
// The viewer's notifications are bound explicitly: its load event calls
// HandleLoad, progress calls HandleProgress and error calls HandleError.
type Shell struct {
	target   viewer.Target
	detector *capability.Detector
	controls *viewer.Controls
	tracker  *progress.Tracker
	loader   *loader.Loader
	lang     language.Tag

	mu     sync.Mutex
	desc   capability.Descriptor
	params quality.Parameters
	preset *capability.Descriptor
}

// New creates a shell for target. It applies the initial controls; call
// Init to detect the tier and apply quality parameters.
func New(target viewer.Target, opts ...Option) *Shell {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Shell{
		target:   target,
		detector: o.detector,
		controls: viewer.NewControls(target, o.controls),
		tracker:  progress.NewTracker(o.trackerOpts...),
		loader:   o.loader,
		lang:     o.lang,
		preset:   o.descriptor,
	}
	if s.detector == nil {
		s.detector = capability.NewDetector()
	}
	if s.loader == nil {
		s.loader = loader.New()
	}
	return s
}

// Init detects the capability tier, resolves the quality parameters for it
// and applies them to the viewer. It returns the descriptor.
func (s *Shell) Init(ctx context.Context) capability.Descriptor {
	var desc capability.Descriptor
	if s.preset != nil {
		desc = *s.preset
	} else {
		desc = s.detector.Detect(ctx)
	}
	params := quality.Resolve(desc.Tier)
	params.Apply(s.target)

	s.mu.Lock()
	s.desc = desc
	s.params = params
	s.mu.Unlock()

	Logger().Info("modelo: viewer initialized",
		"tier", desc.Tier,
		"prober", desc.Prober,
		"status", desc.Status(s.lang),
		"tone_mapping", params.ToneMapping,
		"high_performance_vendor", desc.IsHighPerformanceVendor())
	return desc
}

// Descriptor returns the descriptor from the last Init.
func (s *Shell) Descriptor() capability.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc
}

// Parameters returns the quality parameters applied by the last Init.
func (s *Shell) Parameters() quality.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Status returns the localized tier status line.
func (s *Shell) Status() string {
	return s.Descriptor().Status(s.lang)
}

// Controls returns the viewer controls.
func (s *Shell) Controls() *viewer.Controls { return s.controls }

// Tracker returns the load tracker.
func (s *Shell) Tracker() *progress.Tracker { return s.tracker }

// SetSource points the viewer at url and starts tracking the load. A load
// already in flight is superseded.
func (s *Shell) SetSource(url string) progress.Snapshot {
	var snap progress.Snapshot
	if s.tracker.Snapshot().State == progress.Idle {
		snap = s.tracker.Start(url)
	} else {
		snap = s.tracker.Supersede(url)
	}
	s.target.SetAttribute(viewer.AttrSrc, snap.URL)
	return snap
}

// Retry reloads the current source with a cache-defeating token after an
// error or timeout.
func (s *Shell) Retry() (progress.Snapshot, error) {
	snap, err := s.tracker.Retry()
	if err != nil {
		return snap, err
	}
	s.target.SetAttribute(viewer.AttrSrc, snap.URL)
	return snap, nil
}

// HandleLoad is bound to the viewer's load event.
func (s *Shell) HandleLoad() {
	s.loadAt(progress.CurrentGeneration)
}

// HandleProgress is bound to the viewer's progress event.
func (s *Shell) HandleProgress(fraction float64) {
	s.progressAt(progress.CurrentGeneration, fraction)
}

// HandleError is bound to the viewer's error event.
func (s *Shell) HandleError(err error) {
	s.tracker.ErrorAt(progress.CurrentGeneration, err)
}

// loadAt completes attempt gen and captures the orbit it loaded with.
func (s *Shell) loadAt(gen uint64) {
	if s.tracker.LoadCompleteAt(gen) {
		s.controls.CaptureInitialOrbit()
	}
}

func (s *Shell) progressAt(gen uint64, fraction float64) {
	if s.tracker.ProgressAt(gen, fraction) {
		s.controls.CaptureInitialOrbit()
	}
}

// Fetch sets url as the source and downloads it into w, driving the tracker
// from the download. The download is abandoned when the attempt times out
// or is superseded; the returned error is then the attempt's error.
func (s *Shell) Fetch(ctx context.Context, url string, w io.Writer) (int64, error) {
	return s.fetch(ctx, s.SetSource(url), w)
}

// RetryFetch retries the failed attempt and downloads the new URL into w.
func (s *Shell) RetryFetch(ctx context.Context, w io.Writer) (int64, error) {
	snap, err := s.Retry()
	if err != nil {
		return 0, err
	}
	return s.fetch(ctx, snap, w)
}

func (s *Shell) fetch(ctx context.Context, attempt progress.Snapshot, w io.Writer) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen := attempt.Generation
	unsubscribe := s.tracker.Subscribe(func(cur progress.Snapshot) {
		if cur.Generation != gen || cur.State == progress.TimedOut {
			cancel()
		}
	})
	defer unsubscribe()

	// Events are addressed to this attempt's generation; the tracker drops
	// them once the attempt is superseded or retried.
	ev := loader.Events{
		OnProgress: func(f float64) { s.progressAt(gen, f) },
		OnLoad:     func() { s.loadAt(gen) },
		OnError:    func(err error) { s.tracker.ErrorAt(gen, err) },
	}

	n, err := s.loader.Fetch(ctx, attempt.URL, w, ev)
	if err == nil {
		return n, nil
	}
	// The caller gave up while the attempt was still in flight; fail it so
	// its timer is disarmed.
	if s.tracker.ErrorAt(gen, err) {
		return n, err
	}
	snap := s.tracker.Snapshot()
	if snap.Generation != gen {
		return n, ErrSuperseded
	}
	if snap.Err != nil {
		return n, snap.Err
	}
	return n, err
}

// Close stops the tracker's timer.
func (s *Shell) Close() {
	s.tracker.Close()
}
