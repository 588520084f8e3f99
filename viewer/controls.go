package viewer

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
)

// ErrInvalidSpeed is returned for rotation speeds that are not finite
// positive numbers.
var ErrInvalidSpeed = errors.New("viewer: invalid rotation speed")

// Camera holds a camera orbit and target in model-viewer syntax.
type Camera struct {
	Orbit  string
	Target string
}

// DefaultCamera is the camera the viewer starts from.
var DefaultCamera = Camera{Orbit: "0deg 75deg 2.5m", Target: "0m 0m 0m"}

// DefaultSpeeds are the named rotation-per-second presets, in radians/s.
var DefaultSpeeds = map[string]float64{
	"slow":      0.25,
	"normal":    0.5,
	"fast":      1,
	"very-fast": 1.5,
}

// ControlsConfig configures Controls.
type ControlsConfig struct {
	// AutoRotate is the initial rotation state.
	AutoRotate bool
	// Speed is the initial rotation speed. Values that are not finite and
	// positive fall back to 0.5.
	Speed float64
	// Speeds are named presets for SetSpeedPreset. Nil uses DefaultSpeeds.
	Speeds map[string]float64
	// Camera is the reset camera. Empty fields use DefaultCamera.
	Camera Camera
}

// Controls implements the viewer's user controls on a Target.
type Controls struct {
	mu           sync.Mutex
	target       Target
	rotating     bool
	speed        float64
	speeds       map[string]float64
	camera       Camera
	initialOrbit string
}

// NewControls creates controls for target and applies the initial rotation
// state and camera.
func NewControls(target Target, cfg ControlsConfig) *Controls {
	c := &Controls{
		target:   target,
		rotating: cfg.AutoRotate,
		speed:    cfg.Speed,
		speeds:   cfg.Speeds,
		camera:   cfg.Camera,
	}
	if !validSpeed(c.speed) {
		c.speed = DefaultSpeeds["normal"]
	}
	if c.speeds == nil {
		c.speeds = DefaultSpeeds
	}
	if c.camera.Orbit == "" {
		c.camera.Orbit = DefaultCamera.Orbit
	}
	if c.camera.Target == "" {
		c.camera.Target = DefaultCamera.Target
	}

	c.mu.Lock()
	c.applyRotation()
	c.target.SetAttribute(AttrCameraOrbit, c.camera.Orbit)
	c.target.SetAttribute(AttrCameraTarget, c.camera.Target)
	c.mu.Unlock()
	return c
}

// Rotating reports whether auto-rotate is on.
func (c *Controls) Rotating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotating
}

// Speed returns the current rotation speed.
func (c *Controls) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// ToggleRotation flips auto-rotate and returns the new state.
func (c *Controls) ToggleRotation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotating = !c.rotating
	c.applyRotation()
	return c.rotating
}

// SetRotation sets auto-rotate explicitly.
func (c *Controls) SetRotation(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotating = on
	c.applyRotation()
}

// SetRotationSpeed parses s as a float and applies it. Unparseable,
// non-finite, zero or negative input leaves the speed unchanged.
func (c *Controls) SetRotationSpeed(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !validSpeed(v) {
		return ErrInvalidSpeed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = v
	c.applyRotation()
	return nil
}

// SetSpeedPreset applies a named preset. It reports false for unknown names.
func (c *Controls) SetSpeedPreset(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.speeds[name]
	if !ok {
		return false
	}
	c.speed = v
	c.applyRotation()
	return true
}

// CaptureInitialOrbit remembers the current camera orbit as the reset
// orbit. The shell calls it when a model finishes loading.
func (c *Controls) CaptureInitialOrbit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if orbit, ok := c.target.Attribute(AttrCameraOrbit); ok && orbit != "" {
		c.initialOrbit = orbit
	} else {
		c.initialOrbit = c.camera.Orbit
	}
}

// ResetCamera restores the captured orbit, or the configured default when
// nothing was captured, and the default target.
func (c *Controls) ResetCamera() {
	c.mu.Lock()
	defer c.mu.Unlock()
	orbit := c.initialOrbit
	if orbit == "" {
		orbit = c.camera.Orbit
	}
	c.target.SetAttribute(AttrCameraOrbit, orbit)
	c.target.SetAttribute(AttrCameraTarget, c.camera.Target)
}

// SetOrbit writes a camera orbit, e.g. one restored from preferences.
func (c *Controls) SetOrbit(orbit string) {
	if orbit == "" {
		return
	}
	c.target.SetAttribute(AttrCameraOrbit, orbit)
}

// applyRotation writes the rotation attributes. Caller holds c.mu.
func (c *Controls) applyRotation() {
	if c.rotating {
		c.target.SetAttribute(AttrAutoRotate, "")
		c.target.SetAttribute(AttrRotationPerSecond, FormatNumber(c.speed))
	} else {
		c.target.RemoveAttribute(AttrAutoRotate)
	}
}

// FormatNumber formats v the way attribute values are written: shortest
// decimal form, so 1.0 becomes "1" and 0.25 stays "0.25".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func validSpeed(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 }

// Action is a keyboard-triggered control.
type Action int

// Keyboard actions.
const (
	ActionNone Action = iota
	ActionToggleRotation
	ActionFullscreen
)

// KeyAction maps a key name to its action: "r" and space toggle rotation,
// "f" toggles fullscreen. Matching is case-insensitive.
func KeyAction(key string) Action {
	switch strings.ToLower(key) {
	case "r", " ":
		return ActionToggleRotation
	case "f":
		return ActionFullscreen
	}
	return ActionNone
}
