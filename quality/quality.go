// Package quality maps a capability tier to render-quality parameters.
//
// The mapping is a fixed table:
//
//	tier                         tone-mapping  shadow-intensity  shadow-softness  exposure
//	HighPerf3D                   aces          1.5               1                1.3
//	Accelerated3D                neutral       1.2               0.8              1.2
//	BasicGraphics, Unsupported   (unset)       0.8               0.5              1
package quality

import (
	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/viewer"
)

// ToneMapping selects the viewer's tone-mapping operator.
type ToneMapping int

// Tone-mapping modes.
const (
	// ToneMappingDefault leaves the attribute unset so the viewer uses its
	// own default.
	ToneMappingDefault ToneMapping = iota
	ToneMappingACES
	ToneMappingNeutral
)

// String returns the attribute value; empty for ToneMappingDefault.
func (t ToneMapping) String() string {
	switch t {
	case ToneMappingACES:
		return "aces"
	case ToneMappingNeutral:
		return "neutral"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ToneMapping) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Parameters are the render-quality attributes for one tier.
type Parameters struct {
	ToneMapping     ToneMapping `json:"toneMapping"`
	ShadowIntensity float64     `json:"shadowIntensity"` // 0–2
	ShadowSoftness  float64     `json:"shadowSoftness"`  // 0–1
	Exposure        float64     `json:"exposure"`        // 0–2
}

var (
	highPerf = Parameters{
		ToneMapping:     ToneMappingACES,
		ShadowIntensity: 1.5,
		ShadowSoftness:  1.0,
		Exposure:        1.3,
	}
	accelerated = Parameters{
		ToneMapping:     ToneMappingNeutral,
		ShadowIntensity: 1.2,
		ShadowSoftness:  0.8,
		Exposure:        1.2,
	}
	basic = Parameters{
		ToneMapping:     ToneMappingDefault,
		ShadowIntensity: 0.8,
		ShadowSoftness:  0.5,
		Exposure:        1.0,
	}
)

// Resolve returns the parameters for tier. It is pure and total: any value
// that is not HighPerf3D or Accelerated3D gets the basic row.
func Resolve(tier capability.Tier) Parameters {
	switch tier {
	case capability.HighPerf3D:
		return highPerf
	case capability.Accelerated3D:
		return accelerated
	default:
		return basic
	}
}

// AttributeSetter is the part of a viewer element Apply writes to.
type AttributeSetter interface {
	SetAttribute(name, value string)
	RemoveAttribute(name string)
}

// Attributes returns the attribute values for p in a fixed order.
// Tone mapping is omitted when it is ToneMappingDefault.
func (p Parameters) Attributes() []viewer.Attr {
	attrs := make([]viewer.Attr, 0, 4)
	if p.ToneMapping != ToneMappingDefault {
		attrs = append(attrs, viewer.Attr{Name: viewer.AttrToneMapping, Value: p.ToneMapping.String()})
	}
	return append(attrs,
		viewer.Attr{Name: viewer.AttrShadowIntensity, Value: viewer.FormatNumber(p.ShadowIntensity)},
		viewer.Attr{Name: viewer.AttrShadowSoftness, Value: viewer.FormatNumber(p.ShadowSoftness)},
		viewer.Attr{Name: viewer.AttrExposure, Value: viewer.FormatNumber(p.Exposure)},
	)
}

// Apply writes p onto the viewer. ToneMappingDefault removes the
// tone-mapping attribute. Applying the same parameters again leaves the
// element unchanged.
func (p Parameters) Apply(v AttributeSetter) {
	if v == nil {
		return
	}
	if p.ToneMapping == ToneMappingDefault {
		v.RemoveAttribute(viewer.AttrToneMapping)
	}
	for _, a := range p.Attributes() {
		v.SetAttribute(a.Name, a.Value)
	}
}
