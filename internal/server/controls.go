package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gogpu/modelo/viewer"
)

// controlAttrs are the viewer attributes the controls endpoint reads and
// writes. The page replaces exactly these after every call.
var controlAttrs = []string{
	viewer.AttrAutoRotate,
	viewer.AttrRotationPerSecond,
	viewer.AttrCameraOrbit,
	viewer.AttrCameraTarget,
}

var errUnknownAction = errors.New("unknown control action")

type controlsRequest struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
	// Attributes is the page's current control attribute state.
	Attributes map[string]string `json:"attributes"`
	// InitialOrbit is the orbit captured when the model loaded.
	InitialOrbit string `json:"initialOrbit,omitempty"`
}

type controlsResponse struct {
	Attributes map[string]string `json:"attributes"`
	Rotating   bool              `json:"rotating"`
	Speed      float64           `json:"speed"`
	Fullscreen bool              `json:"fullscreen,omitempty"`
}

// handleControls applies one user control to the attribute state the page
// sends and returns the resulting state. The server keeps nothing between
// calls.
func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	var req controlsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPrefBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad body: %w", err))
		return
	}

	el := viewer.NewElement("viewer")
	c := s.restoreControls(el, req)

	var resp controlsResponse
	switch req.Action {
	case "toggle-rotation":
		c.ToggleRotation()
	case "rotation":
		on, err := strconv.ParseBool(req.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("rotation %q: %w", req.Value, err))
			return
		}
		c.SetRotation(on)
	case "speed":
		if err := c.SetRotationSpeed(req.Value); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", err, req.Value))
			return
		}
	case "preset":
		if !c.SetSpeedPreset(req.Value) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown speed preset %q", req.Value))
			return
		}
	case "reset-camera":
		c.ResetCamera()
	case "key":
		switch viewer.KeyAction(req.Value) {
		case viewer.ActionToggleRotation:
			c.ToggleRotation()
		case viewer.ActionFullscreen:
			resp.Fullscreen = true
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", errUnknownAction, req.Action))
		return
	}

	resp.Attributes = make(map[string]string, len(controlAttrs))
	for _, name := range controlAttrs {
		if v, ok := el.Attribute(name); ok {
			resp.Attributes[name] = v
		}
	}
	resp.Rotating = c.Rotating()
	resp.Speed = c.Speed()
	writeJSON(w, http.StatusOK, resp)
}

// restoreControls rebuilds the controls for the state described by req.
func (s *Server) restoreControls(el *viewer.Element, req controlsRequest) *viewer.Controls {
	_, rotating := req.Attributes[viewer.AttrAutoRotate]
	// An unparseable speed is zero, which NewControls replaces.
	speed, _ := strconv.ParseFloat(req.Attributes[viewer.AttrRotationPerSecond], 64)

	c := viewer.NewControls(el, s.controlsConfig(rotating, speed))
	if req.InitialOrbit != "" {
		c.SetOrbit(req.InitialOrbit)
		c.CaptureInitialOrbit()
	}
	for _, name := range []string{viewer.AttrCameraOrbit, viewer.AttrCameraTarget} {
		if v := req.Attributes[name]; v != "" {
			el.SetAttribute(name, v)
		}
	}
	return c
}

func (s *Server) controlsConfig(rotating bool, speed float64) viewer.ControlsConfig {
	return viewer.ControlsConfig{
		AutoRotate: rotating,
		Speed:      speed,
		Speeds:     s.cfg.Viewer.Speeds,
		Camera:     viewer.Camera{Orbit: s.cfg.Camera.DefaultOrbit, Target: s.cfg.Camera.DefaultTarget},
	}
}
