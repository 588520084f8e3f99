// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halprobe

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/modelo/capability"
)

func adapters(types ...gputypes.DeviceType) []hal.ExposedAdapter {
	out := make([]hal.ExposedAdapter, len(types))
	for i, t := range types {
		out[i].Info.DeviceType = t
		out[i].Info.Name = fmt.Sprint(t)
	}
	return out
}

func TestRegistered(t *testing.T) {
	for _, name := range []string{NamePrimary, NameGL, NameSoftware} {
		if !capability.IsRegistered(name) {
			t.Errorf("prober %q is not registered", name)
		}
	}
}

func TestPlatformBackendsLinked(t *testing.T) {
	want := []gputypes.Backend{gputypes.BackendEmpty}
	switch runtime.GOOS {
	case "linux":
		want = append(want, gputypes.BackendVulkan, gputypes.BackendGL)
	case "windows":
		want = append(want, gputypes.BackendVulkan, gputypes.BackendDX12, gputypes.BackendGL)
	case "darwin":
		want = append(want, gputypes.BackendMetal, gputypes.BackendVulkan)
	}
	for _, api := range want {
		if _, ok := hal.GetBackend(api); !ok {
			t.Errorf("hal.GetBackend(%v) not registered on %s", api, runtime.GOOS)
		}
	}
}

func TestProbersCoverLinkedBackends(t *testing.T) {
	covered := make(map[gputypes.Backend]bool)
	for _, p := range []*Prober{Primary(), GL(), Software()} {
		for _, api := range p.backends {
			covered[api] = true
		}
	}
	for _, api := range hal.AvailableBackends() {
		if !covered[api] {
			t.Errorf("backend %v is registered but no prober tries it", api)
		}
	}
}

func TestProberTiers(t *testing.T) {
	tests := []struct {
		p    *Prober
		want capability.Tier
	}{
		{Primary(), capability.HighPerf3D},
		{GL(), capability.Accelerated3D},
		{Software(), capability.BasicGraphics},
	}
	for _, tt := range tests {
		if got := tt.p.Tier(); got != tt.want {
			t.Errorf("%s.Tier() = %v, want %v", tt.p.Name(), got, tt.want)
		}
	}
}

func TestSelectAdapterPrefersDiscrete(t *testing.T) {
	list := adapters(gputypes.DeviceTypeCPU, gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeDiscreteGPU)

	got := Primary().selectAdapter(list)
	if got == nil {
		t.Fatal("selectAdapter() = nil")
	}
	if got.Info.DeviceType != gputypes.DeviceTypeDiscreteGPU {
		t.Errorf("selectAdapter() type = %v, want discrete", got.Info.DeviceType)
	}
}

func TestSelectAdapterRejectsCPUForPrimary(t *testing.T) {
	if got := Primary().selectAdapter(adapters(gputypes.DeviceTypeCPU)); got != nil {
		t.Errorf("Primary().selectAdapter(cpu) = %v, want nil", got.Info.Name)
	}
	if got := GL().selectAdapter(adapters(gputypes.DeviceTypeCPU)); got != nil {
		t.Errorf("GL().selectAdapter(cpu) = %v, want nil", got.Info.Name)
	}
}

func TestSelectAdapterSoftwareOnlyCPU(t *testing.T) {
	p := Software()
	if got := p.selectAdapter(adapters(gputypes.DeviceTypeDiscreteGPU)); got != nil {
		t.Errorf("Software().selectAdapter(discrete) = %v, want nil", got.Info.Name)
	}
	got := p.selectAdapter(adapters(gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeCPU))
	if got == nil || got.Info.DeviceType != gputypes.DeviceTypeCPU {
		t.Errorf("Software().selectAdapter() = %v, want the CPU adapter", got)
	}
}

func TestSelectAdapterEmpty(t *testing.T) {
	if got := Primary().selectAdapter(nil); got != nil {
		t.Errorf("selectAdapter(nil) = %v, want nil", got)
	}
}

func TestProbeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Primary().Probe(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Probe(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestProbeWithoutBackends(t *testing.T) {
	p := &Prober{name: "empty", tier: capability.BasicGraphics, rank: highPerformanceRank}
	if _, err := p.Probe(context.Background()); !errors.Is(err, capability.ErrBackendUnavailable) {
		t.Errorf("Probe() error = %v, want ErrBackendUnavailable", err)
	}
}
