// Package capability detects the best available graphics backend and
// reports it as a ranked Tier.
//
// # Tiers
//
// Probing walks the tiers in strict priority order and stops at the first
// backend that initializes:
//
//	HighPerf3D     modern GPU API (Vulkan, Metal, DX12) with a logical device
//	Accelerated3D  secondary accelerated context (GL class)
//	BasicGraphics  minimal or software-rasterized context
//	Unsupported    nothing initialized
//
// A probe that returns an error or panics is treated as "unavailable" and
// detection falls through to the next prober. Detect never fails.
//
// # Prober Registration
//
// Probers register from init() functions, the same way rendering backends do.
// The wgpu/hal probers are registered on import:
//
//	import _ "github.com/gogpu/modelo/capability/halprobe"
//
// A host that already owns a device can hand it over:
//
//	d := capability.NewDetector(capability.WithDeviceProvider(provider))
//	desc := d.Detect(ctx)
//
// # Backend Details
//
// Descriptor.Backend is optional. When present, every field is populated and
// missing driver strings read as Unknown. Backend details never affect the
// selected tier.
package capability
