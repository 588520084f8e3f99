package modelo

import (
	"context"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/progress"
	"github.com/gogpu/modelo/viewer"
)

// TestNewDefault tests that New applies the default controls and tracker.
func TestNewDefault(t *testing.T) {
	el := viewer.NewElement("viewer")
	sh := New(el)
	defer sh.Close()

	if !el.HasAttribute(viewer.AttrAutoRotate) {
		t.Error("auto-rotate not set by default")
	}
	if got := sh.Tracker().Timeout(); got != progress.DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", got, progress.DefaultTimeout)
	}
	if got := sh.Tracker().Snapshot().State; got != progress.Idle {
		t.Errorf("initial state = %v, want %v", got, progress.Idle)
	}
}

// TestWithDescriptor tests that a preset descriptor skips detection.
func TestWithDescriptor(t *testing.T) {
	probed := false
	det := capability.NewDetector(capability.WithProbers(capability.ProbeFunc{
		ProberName: "should-not-run",
		ProberTier: capability.HighPerf3D,
		Fn: func(context.Context) (*capability.BackendInfo, error) {
			probed = true
			return nil, nil
		},
	}))

	sh := New(viewer.NewElement("viewer"),
		WithDetector(det),
		WithDescriptor(capability.Descriptor{Tier: capability.BasicGraphics}))
	defer sh.Close()

	if got := sh.Init(context.Background()); got.Tier != capability.BasicGraphics {
		t.Errorf("Init().Tier = %v, want %v", got.Tier, capability.BasicGraphics)
	}
	if probed {
		t.Error("detector ran despite WithDescriptor")
	}
}

func TestWithControlsAndTrackerOptions(t *testing.T) {
	el := viewer.NewElement("viewer")
	sh := New(el,
		WithControls(viewer.ControlsConfig{Speed: 1, Camera: viewer.Camera{Orbit: "0deg 90deg 4m"}}),
		WithTrackerOptions(progress.WithTimeout(45*time.Second)),
		WithLanguage(language.Spanish))
	defer sh.Close()

	if el.HasAttribute(viewer.AttrAutoRotate) {
		t.Error("auto-rotate set although AutoRotate is false")
	}
	if v, _ := el.Attribute(viewer.AttrCameraOrbit); v != "0deg 90deg 4m" {
		t.Errorf("camera-orbit = %q", v)
	}
	if got := sh.Tracker().Timeout(); got != 45*time.Second {
		t.Errorf("Timeout() = %v, want 45s", got)
	}
	if got := sh.Tracker().Snapshot().Message; got != "Inicializando vista avanzada..." {
		t.Errorf("Message = %q, want Spanish idle message", got)
	}
}
