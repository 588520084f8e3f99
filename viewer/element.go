// Package viewer models the <model-viewer> element the shell drives.
//
// The element itself lives in the browser. This package keeps its attribute
// state on the Go side, renders it as HTML, and implements the user controls
// (auto-rotate, rotation speed, camera reset) on top of any Target.
package viewer

import (
	"html/template"
	"sort"
	"strings"
	"sync"
)

// Attribute names written by the shell.
const (
	AttrSrc               = "src"
	AttrAutoRotate        = "auto-rotate"
	AttrRotationPerSecond = "rotation-per-second"
	AttrToneMapping       = "tone-mapping"
	AttrShadowIntensity   = "shadow-intensity"
	AttrShadowSoftness    = "shadow-softness"
	AttrExposure          = "exposure"
	AttrCameraOrbit       = "camera-orbit"
	AttrCameraTarget      = "camera-target"
	AttrCameraControls    = "camera-controls"
	AttrEnvironmentImage  = "environment-image"
	AttrInteractionPrompt = "interaction-prompt"
)

// Target is the attribute surface of a viewer element.
type Target interface {
	SetAttribute(name, value string)
	RemoveAttribute(name string)
	Attribute(name string) (string, bool)
}

// Attr is one name/value pair. Boolean attributes have an empty value.
type Attr struct {
	Name  string
	Value string
}

// Element is an in-memory <model-viewer> element. It is safe for
// concurrent use.
type Element struct {
	mu    sync.RWMutex
	id    string
	attrs map[string]string
}

// NewElement returns an element with the given DOM id and no attributes.
func NewElement(id string) *Element {
	return &Element{id: id, attrs: make(map[string]string)}
}

// ID returns the DOM id.
func (e *Element) ID() string { return e.id }

// SetAttribute implements Target.
func (e *Element) SetAttribute(name, value string) {
	e.mu.Lock()
	e.attrs[name] = value
	e.mu.Unlock()
}

// RemoveAttribute implements Target.
func (e *Element) RemoveAttribute(name string) {
	e.mu.Lock()
	delete(e.attrs, name)
	e.mu.Unlock()
}

// Attribute implements Target.
func (e *Element) Attribute(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.attrs[name]
	return v, ok
}

// HasAttribute reports whether name is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.Attribute(name)
	return ok
}

// Attributes returns all attributes sorted by name.
func (e *Element) Attributes() []Attr {
	e.mu.RLock()
	out := make([]Attr, 0, len(e.attrs))
	for k, v := range e.attrs {
		out = append(out, Attr{Name: k, Value: v})
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// HTML renders the element with escaped attribute values.
func (e *Element) HTML() template.HTML {
	var b strings.Builder
	b.WriteString("<model-viewer")
	if e.id != "" {
		b.WriteString(` id="`)
		b.WriteString(template.HTMLEscapeString(e.id))
		b.WriteByte('"')
	}
	for _, a := range e.Attributes() {
		b.WriteByte(' ')
		b.WriteString(template.HTMLEscapeString(a.Name))
		if a.Value != "" {
			b.WriteString(`="`)
			b.WriteString(template.HTMLEscapeString(a.Value))
			b.WriteByte('"')
		}
	}
	b.WriteString("></model-viewer>")
	return template.HTML(b.String()) //nolint:gosec // every piece above is escaped
}
