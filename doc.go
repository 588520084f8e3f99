// Package modelo drives a web 3D model viewer from Go: it detects the best
// graphics backend available, picks render-quality parameters for it, and
// tracks model loads with timeouts and deliberate retries.
//
// # Overview
//
// A [Shell] owns one viewer element and three collaborators:
//
//   - a [capability.Detector] that tries backends in strict priority order
//     (high-performance 3D, accelerated 3D, basic graphics) and returns the
//     first that initializes;
//   - the [quality] policy, a fixed table from tier to tone mapping, shadow
//     intensity, shadow softness and exposure;
//   - a [progress.Tracker], the state machine for one model source.
//
// # Quick Start
//
//	el := viewer.NewElement("viewer")
//	sh := modelo.New(el)
//	defer sh.Close()
//
//	desc := sh.Init(ctx)          // detect, resolve, apply
//	sh.SetSource("helmet.glb")    // Loading, timeout armed
//
//	// Bind the viewer's events:
//	sh.HandleProgress(0.5)
//	sh.HandleLoad()
//
// # Probers
//
// Backends register probers from init functions, the way database drivers
// register with database/sql. Import the probers you want:
//
//	import _ "github.com/gogpu/modelo/capability/halprobe"
//
// Build with -tags nogpu to drop the GPU probers, or -tags rust to add the
// wgpu-native prober.
//
// # Loading
//
// A load session moves Idle → Loading → Progressing → Loaded, or ends in
// Errored or TimedOut. Neither failure is retried automatically: call
// [Shell.Retry] (or [Shell.RetryFetch]) to start a new attempt whose URL
// carries a fresh "t" query parameter. [Shell.SetSource] supersedes any
// attempt in flight.
//
// # Logging
//
// modelo is silent by default. [SetLogger] enables structured logging with
// log/slog for this package and its sub-packages.
package modelo
