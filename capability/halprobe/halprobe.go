// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halprobe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	// Register every HAL the platform offers: Vulkan, Metal, DX12, GLES
	// and the software rasterizer.
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/modelo/capability"
)

// Prober names.
const (
	NamePrimary  = "hal-primary"
	NameGL       = "hal-gl"
	NameSoftware = "hal-software"
)

var (
	errNoBackend = errors.New("halprobe: backend not registered")
	errNoAdapter = errors.New("halprobe: no suitable adapter")
)

// preflightWGSL is the smallest compute module; compiling it proves the
// shader toolchain is usable for the selected backend.
const preflightWGSL = `@compute @workgroup_size(1)
fn main() {}
`

func init() {
	capability.Register(NamePrimary, func() capability.Prober { return Primary() })
	capability.Register(NameGL, func() capability.Prober { return GL() })
	capability.Register(NameSoftware, func() capability.Prober { return Software() })
}

// Prober probes a set of HAL backends for an adapter of an accepted type.
type Prober struct {
	name      string
	tier      capability.Tier
	backends  []gputypes.Backend
	rank      func(gputypes.DeviceType) int // -1 rejects the adapter
	preflight bool
}

// Primary returns the HighPerf3D prober. Adapters are ranked discrete,
// integrated, then anything else that is not a CPU adapter, which is the
// native equivalent of a high-performance power preference.
func Primary() *Prober {
	return &Prober{
		name:      NamePrimary,
		tier:      capability.HighPerf3D,
		backends:  []gputypes.Backend{gputypes.BackendVulkan, gputypes.BackendMetal, gputypes.BackendDX12},
		rank:      highPerformanceRank,
		preflight: true,
	}
}

// GL returns the Accelerated3D prober.
func GL() *Prober {
	return &Prober{
		name:     NameGL,
		tier:     capability.Accelerated3D,
		backends: []gputypes.Backend{gputypes.BackendGL},
		rank:     highPerformanceRank,
	}
}

// Software returns the BasicGraphics prober. It accepts CPU adapters from
// any driver, including wgpu's software rasterizer, which registers as
// gputypes.BackendEmpty.
func Software() *Prober {
	return &Prober{
		name: NameSoftware,
		tier: capability.BasicGraphics,
		backends: []gputypes.Backend{
			gputypes.BackendEmpty,
			gputypes.BackendVulkan, gputypes.BackendMetal,
			gputypes.BackendDX12, gputypes.BackendGL,
		},
		rank: func(t gputypes.DeviceType) int {
			if t == gputypes.DeviceTypeCPU {
				return 0
			}
			return -1
		},
	}
}

func highPerformanceRank(t gputypes.DeviceType) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return 0
	case gputypes.DeviceTypeIntegratedGPU:
		return 1
	case gputypes.DeviceTypeCPU:
		return -1
	default:
		return 2
	}
}

// Name implements capability.Prober.
func (p *Prober) Name() string { return p.name }

// Tier implements capability.Prober.
func (p *Prober) Tier() capability.Tier { return p.tier }

// Probe implements capability.Prober. Backends are tried in order; the
// first one that yields an accepted adapter and opens a device wins. All
// handles are released before Probe returns.
func (p *Prober) Probe(ctx context.Context) (*capability.BackendInfo, error) {
	log := capability.Logger()
	errs := make([]error, 0, len(p.backends))

	for _, api := range p.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := p.probeBackend(api)
		if err != nil {
			log.Debug("halprobe: backend rejected", "prober", p.name, "api", api, "err", err)
			errs = append(errs, fmt.Errorf("%v: %w", api, err))
			continue
		}
		return info, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s", capability.ErrBackendUnavailable, p.name)
	}
	return nil, fmt.Errorf("%w: %w", capability.ErrBackendUnavailable, errors.Join(errs...))
}

func (p *Prober) probeBackend(api gputypes.Backend) (*capability.BackendInfo, error) {
	backend, ok := hal.GetBackend(api)
	if !ok {
		return nil, errNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	defer instance.Destroy()

	selected := p.selectAdapter(instance.EnumerateAdapters(nil))
	if selected == nil {
		return nil, errNoAdapter
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	defer openDev.Device.Destroy()

	if p.preflight {
		if _, err := naga.Compile(preflightWGSL); err != nil {
			return nil, fmt.Errorf("shader preflight: %w", err)
		}
	}

	return capability.NewBackendInfo(capability.BackendInfo{
		API:          strings.ToLower(fmt.Sprint(api)),
		Vendor:       fmt.Sprint(selected.Info.Vendor),
		Renderer:     selected.Info.Name,
		Architecture: fmt.Sprint(selected.Info.DeviceType),
		Version:      fmt.Sprint(selected.Info.Driver),
	}), nil
}

// selectAdapter returns the best-ranked accepted adapter, or nil.
func (p *Prober) selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	var selected *hal.ExposedAdapter
	best := -1
	for i := range adapters {
		r := p.rank(adapters[i].Info.DeviceType)
		if r < 0 {
			continue
		}
		if selected == nil || r < best {
			selected, best = &adapters[i], r
		}
	}
	return selected
}
