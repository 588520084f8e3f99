package capability

import (
	"strings"

	"golang.org/x/text/language"
)

// Unknown is the value recorded for backend details the driver does not expose.
const Unknown = "unknown"

// BackendInfo describes the adapter that satisfied a probe.
// It is informational only and never affects tier selection.
type BackendInfo struct {
	// API is the graphics API the probe went through (e.g. "vulkan", "gl").
	API string `json:"api"`
	// Vendor is the adapter vendor.
	Vendor string `json:"vendor"`
	// Renderer is the adapter or device name.
	Renderer string `json:"renderer"`
	// Architecture is the device type or architecture string.
	Architecture string `json:"architecture"`
	// Version is the driver version string.
	Version string `json:"version"`
	// Description is a free-form summary.
	Description string `json:"description"`
}

// NewBackendInfo returns info with every empty field set to Unknown.
// Probers construct BackendInfo through this function so that callers never
// see empty strings.
func NewBackendInfo(info BackendInfo) *BackendInfo {
	info.API = orUnknown(info.API)
	info.Vendor = orUnknown(info.Vendor)
	info.Renderer = orUnknown(info.Renderer)
	info.Architecture = orUnknown(info.Architecture)
	info.Version = orUnknown(info.Version)
	info.Description = orUnknown(info.Description)
	return &info
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Unknown
	}
	return s
}

// Descriptor is the immutable result of capability detection.
type Descriptor struct {
	// Tier is the best tier whose probe succeeded.
	Tier Tier `json:"tier"`
	// Prober names the probe that produced Tier. Empty when Unsupported.
	Prober string `json:"prober,omitempty"`
	// Backend holds adapter details when the prober exposed them.
	Backend *BackendInfo `json:"backend,omitempty"`
}

// Status returns the tier's icon and localized label.
func (d Descriptor) Status(tag language.Tag) string {
	return d.Tier.Status(tag)
}

var highPerformanceVendors = []string{"nvidia", "amd", "intel"}

// IsHighPerformanceVendor reports whether the backend vendor or renderer
// names one of the major discrete/integrated GPU vendors.
func (d Descriptor) IsHighPerformanceVendor() bool {
	if d.Backend == nil {
		return false
	}
	vendor := strings.ToLower(d.Backend.Vendor)
	renderer := strings.ToLower(d.Backend.Renderer)
	for _, v := range highPerformanceVendors {
		if strings.Contains(vendor, v) || strings.Contains(renderer, v) {
			return true
		}
	}
	return false
}
