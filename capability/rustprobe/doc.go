// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rustprobe registers a HighPerf3D prober backed by wgpu-native
// through go-webgpu/webgpu. It is only built with -tags rust:
//
//	import _ "github.com/gogpu/modelo/capability/rustprobe"
//
// The prober requests an adapter with the high-performance power preference
// and opens a device on it, mirroring a browser's navigator.gpu bring-up.
package rustprobe
