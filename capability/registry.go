package capability

import (
	"context"
	"sync"
)

// ProberFactory creates a new prober instance.
type ProberFactory func() Prober

type registration struct {
	name    string
	factory ProberFactory
}

// registry holds registered probers in registration order.
// NewDetector sorts them by tier, keeping this order within a tier.
var (
	registryMu sync.RWMutex
	registry   []registration
)

// Register registers a prober factory with the given name.
// This is typically called from init() functions in prober packages.
// If a prober with the same name is already registered, it is replaced
// in place.
func Register(name string, factory ProberFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i := range registry {
		if registry[i].name == name {
			registry[i].factory = factory
			return
		}
	}
	registry = append(registry, registration{name: name, factory: factory})
}

// Unregister removes a prober from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i := range registry {
		if registry[i].name == name {
			registry = append(registry[:i], registry[i+1:]...)
			return
		}
	}
}

// Registered returns the registered prober names in registration order.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.name)
	}
	return names
}

// IsRegistered checks if a prober with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, r := range registry {
		if r.name == name {
			return true
		}
	}
	return false
}

func registeredProbers() []Prober {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ps := make([]Prober, 0, len(registry))
	for _, r := range registry {
		if p := r.factory(); p != nil {
			ps = append(ps, p)
		}
	}
	return ps
}

// Detect runs a detector over the registered probers.
func Detect(ctx context.Context) Descriptor {
	return NewDetector().Detect(ctx)
}
