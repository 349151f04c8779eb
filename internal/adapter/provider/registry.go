// Package provider wires the vendor adapters behind a single lookup so
// the purchase flow stays vendor-agnostic.
package provider

import (
	"fmt"

	"billpay/internal/core/ports"
)

// Registry implements ports.ProviderRegistry.
type Registry struct {
	adapters map[string]ports.ProviderAdapter
}

// NewRegistry creates a registry over the given adapters, keyed by their
// Name().
func NewRegistry(adapters ...ports.ProviderAdapter) *Registry {
	r := &Registry{adapters: make(map[string]ports.ProviderAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// Adapter returns the adapter serving the named provider.
func (r *Registry) Adapter(provider string) (ports.ProviderAdapter, error) {
	a, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %q", provider)
	}
	return a, nil
}
