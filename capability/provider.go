// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capability

import (
	"context"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// ProviderProber grants HighPerf3D when the host application already owns a
// live GPU device and shares it through a gpucontext.DeviceProvider.
// The host keeps ownership; the prober acquires and releases nothing.
type ProviderProber struct {
	provider gpucontext.DeviceProvider
}

// NewProviderProber wraps a host device provider. A nil provider never
// succeeds.
func NewProviderProber(provider gpucontext.DeviceProvider) *ProviderProber {
	return &ProviderProber{provider: provider}
}

// WithDeviceProvider adds a ProviderProber for the host device ahead of the
// registered HighPerf3D probers.
func WithDeviceProvider(provider gpucontext.DeviceProvider) Option {
	return WithProber(NewProviderProber(provider))
}

// Name implements Prober.
func (p *ProviderProber) Name() string { return "host-device" }

// Tier implements Prober.
func (p *ProviderProber) Tier() Tier { return HighPerf3D }

// Probe implements Prober. A host device backed by a software renderer is
// rejected so the software probers classify it instead.
func (p *ProviderProber) Probe(context.Context) (*BackendInfo, error) {
	if p.provider == nil || p.provider.Device() == nil || p.provider.Queue() == nil {
		return nil, fmt.Errorf("%w: host provided no device", ErrBackendUnavailable)
	}

	adapter := p.provider.AdapterInfo()
	if adapter.Type == gpucontext.AdapterTypeSoftware {
		return nil, fmt.Errorf("%w: host device %q is a software renderer", ErrBackendUnavailable, adapter.Name)
	}

	info := BackendInfo{Renderer: adapter.Name, Description: "host-provided device"}
	if adapter.Type != gpucontext.AdapterTypeUnknown {
		info.Architecture = adapter.Type.String()
	}
	if f := p.provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		info.Description += ", surface " + f.String()
	}
	return NewBackendInfo(info), nil
}
