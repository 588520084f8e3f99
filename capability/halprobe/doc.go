// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package halprobe registers capability probers backed by gogpu/wgpu's
// hardware abstraction layer.
//
// Import it for its side effect:
//
//	import _ "github.com/gogpu/modelo/capability/halprobe"
//
// Three probers are registered:
//
//   - "hal-primary" (HighPerf3D): Vulkan, Metal or DX12 with a discrete,
//     integrated or virtual adapter. A logical device is opened and a WGSL
//     preflight shader is compiled with naga.
//   - "hal-gl" (Accelerated3D): the GL backend with a hardware adapter.
//   - "hal-software" (BasicGraphics): any backend exposing a CPU adapter
//     (llvmpipe, SwiftShader, WARP).
//
// The Vulkan HAL is linked in by this package. Other HALs take part when the
// host application imports them.
//
// Build with -tags nogpu to leave the probers out.
package halprobe
