package capability

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/gogpu/modelo/internal/i18n"
)

// Tier is a ranked graphics capability level.
// Higher values are better; the zero value is Unsupported.
type Tier int

// Tiers, worst to best.
const (
	// Unsupported means no graphics backend could be initialized.
	Unsupported Tier = iota
	// BasicGraphics is a minimal or software-rasterized 3D context.
	BasicGraphics
	// Accelerated3D is a secondary hardware-accelerated 3D context (GL class).
	Accelerated3D
	// HighPerf3D is a modern high-performance GPU backend with a live device.
	HighPerf3D
)

// Priority lists the probed tiers from most to least preferred.
// Unsupported is never probed; it is the result when every probe fails.
var Priority = []Tier{HighPerf3D, Accelerated3D, BasicGraphics}

// String returns the tier identifier used in configuration and JSON.
func (t Tier) String() string {
	switch t {
	case HighPerf3D:
		return "high-perf-3d"
	case Accelerated3D:
		return "accelerated-3d"
	case BasicGraphics:
		return "basic-graphics"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Better reports whether t ranks above other.
func (t Tier) Better(other Tier) bool { return t > other }

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool { return t >= Unsupported && t <= HighPerf3D }

// ParseTier parses a tier identifier. Besides the String forms it accepts
// the status names reported by browser-side probes ("webgpu", "webgl2",
// "webgl", "unsupported").
func ParseTier(s string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high-perf-3d", "highperf3d", "webgpu":
		return HighPerf3D, true
	case "accelerated-3d", "accelerated3d", "webgl2":
		return Accelerated3D, true
	case "basic-graphics", "basicgraphics", "webgl", "experimental-webgl":
		return BasicGraphics, true
	case "unsupported", "none":
		return Unsupported, true
	}
	return Unsupported, false
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
// Unknown names decode to Unsupported.
func (t *Tier) UnmarshalText(b []byte) error {
	*t, _ = ParseTier(string(b))
	return nil
}

// Icon returns the status glyph shown next to the tier label.
func (t Tier) Icon() string {
	switch t {
	case HighPerf3D:
		return "🚀"
	case Accelerated3D:
		return "⚡"
	case BasicGraphics:
		return "✨"
	case Unsupported:
		return "⚠️"
	default:
		return "❓"
	}
}

// Label returns the localized human-readable tier label.
func (t Tier) Label(tag language.Tag) string {
	key := i18n.KeyTierUnknown
	switch t {
	case HighPerf3D:
		key = i18n.KeyTierHighPerf
	case Accelerated3D:
		key = i18n.KeyTierAccelerated
	case BasicGraphics:
		key = i18n.KeyTierBasic
	case Unsupported:
		key = i18n.KeyTierUnsupported
	}
	return i18n.Sprintf(tag, key)
}

// Status returns the icon and label, e.g. "🚀 Maximum performance".
// It is presentation-only.
func (t Tier) Status(tag language.Tag) string {
	return t.Icon() + " " + t.Label(tag)
}
