package capability

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Prober attempts to initialize one graphics backend.
//
// Probe returns the adapter details on success. Any error, including a
// panic inside Probe, marks the backend unavailable. A prober should release
// whatever it acquired before returning; the descriptor keeps no handles.
type Prober interface {
	// Name identifies the prober in logs and in Descriptor.Prober.
	Name() string

	// Tier is the tier granted when Probe succeeds.
	Tier() Tier

	// Probe tries to acquire the backend. It may block on driver calls and
	// should honor ctx cancellation where the driver allows.
	Probe(ctx context.Context) (*BackendInfo, error)
}

// Detector runs probers in strict tier priority order and stops at the
// first success.
type Detector struct {
	probers []Prober
}

// Option configures a Detector.
type Option func(*detectorOptions)

type detectorOptions struct {
	probers []Prober
	replace bool
	extra   []Prober
}

// WithProbers replaces the registered probers with ps.
// Used for dependency injection and tests.
func WithProbers(ps ...Prober) Option {
	return func(o *detectorOptions) {
		o.probers = ps
		o.replace = true
	}
}

// WithProber adds p to the probers taken from the registry.
func WithProber(p Prober) Option {
	return func(o *detectorOptions) {
		o.extra = append(o.extra, p)
	}
}

// NewDetector creates a detector over the registered probers, adjusted by opts.
func NewDetector(opts ...Option) *Detector {
	var o detectorOptions
	for _, opt := range opts {
		opt(&o)
	}

	var ps []Prober
	if o.replace {
		ps = append(ps, o.probers...)
	} else {
		ps = registeredProbers()
	}
	// Extra probers go first so that, within a tier, an injected one is
	// tried before the registry's.
	ps = append(append([]Prober(nil), o.extra...), ps...)

	kept := ps[:0]
	for _, p := range ps {
		if p == nil || p.Tier() == Unsupported || !p.Tier().Valid() {
			continue
		}
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Tier().Better(kept[j].Tier())
	})
	return &Detector{probers: kept}
}

// Probers returns the probe order.
func (d *Detector) Probers() []Prober {
	return append([]Prober(nil), d.probers...)
}

// Detect returns the descriptor of the best backend that initializes.
// It never fails: unavailable backends degrade to the next tier and an
// exhausted list yields Unsupported. A cancelled ctx stops probing and
// yields Unsupported unless a probe already succeeded.
func (d *Detector) Detect(ctx context.Context) Descriptor {
	log := Logger()
	for _, p := range d.probers {
		if err := ctx.Err(); err != nil {
			log.Warn("capability: detection cancelled", "err", err)
			break
		}

		info, err := safeProbe(ctx, p)
		if err != nil {
			log.Debug("capability: backend unavailable",
				"prober", p.Name(), "tier", p.Tier(), "err", err)
			continue
		}

		desc := Descriptor{Tier: p.Tier(), Prober: p.Name(), Backend: info}
		log.Info("capability: backend selected",
			"prober", p.Name(), "tier", desc.Tier)
		return desc
	}

	log.Warn("capability: no graphics backend available")
	return Descriptor{Tier: Unsupported}
}

// safeProbe runs p.Probe and converts errors and panics into
// ErrBackendUnavailable.
func safeProbe(ctx context.Context, p Prober) (info *BackendInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrBackendUnavailable, p.Name(), r)
		}
	}()

	info, err = p.Probe(ctx)
	if err != nil {
		if !errors.Is(err, ErrBackendUnavailable) {
			err = fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return info, nil
}

// ProbeFunc adapts a function to the Prober interface.
type ProbeFunc struct {
	ProberName string
	ProberTier Tier
	Fn         func(ctx context.Context) (*BackendInfo, error)
}

// Name implements Prober.
func (f ProbeFunc) Name() string { return f.ProberName }

// Tier implements Prober.
func (f ProbeFunc) Tier() Tier { return f.ProberTier }

// Probe implements Prober.
func (f ProbeFunc) Probe(ctx context.Context) (*BackendInfo, error) {
	if f.Fn == nil {
		return nil, ErrBackendUnavailable
	}
	return f.Fn(ctx)
}
