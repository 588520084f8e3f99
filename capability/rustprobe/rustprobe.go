// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build rust

package rustprobe

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/gogpu/modelo/capability"
)

// Name is the registered prober name.
const Name = "wgpu-native"

// ErrLibraryNotFound is returned when wgpu-native cannot be loaded.
var ErrLibraryNotFound = errors.New("rustprobe: wgpu-native library not found")

func init() {
	capability.Register(Name, func() capability.Prober { return &Prober{} })
}

// Prober probes wgpu-native.
type Prober struct{}

// Name implements capability.Prober.
func (*Prober) Name() string { return Name }

// Tier implements capability.Prober.
func (*Prober) Tier() capability.Tier { return capability.HighPerf3D }

// Probe implements capability.Prober.
func (*Prober) Probe(ctx context.Context) (*capability.BackendInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := wgpu.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLibraryNotFound, err)
	}

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("instance creation failed: %w", err)
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", capability.ErrBackendUnavailable, err)
	}
	defer adapter.Release()

	info := capability.BackendInfo{API: "webgpu", Description: "WebGPU compatible"}
	if ai, err := adapter.GetInfo(); err == nil {
		info.Vendor = ai.Vendor
		info.Architecture = ai.Architecture
		info.Renderer = ai.Device
		if ai.Description != "" {
			info.Description = ai.Description
		}
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("device creation failed: %w", err)
	}
	device.Release()

	return capability.NewBackendInfo(info), nil
}
