package provider

import "fmt"

// Registry holds the configured adapters keyed by gateway code.
// It is populated once at startup and read-only afterwards.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates a registry from the given adapters. A duplicate gateway
// code is a wiring bug and fails construction.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, ok := r.adapters[a.Code()]; ok {
			return nil, fmt.Errorf("duplicate adapter for gateway code %q", a.Code())
		}
		r.adapters[a.Code()] = a
	}
	return r, nil
}

// Get returns the adapter for a gateway code, or false when none is registered
func (r *Registry) Get(code string) (Adapter, bool) {
	a, ok := r.adapters[code]
	return a, ok
}

// Codes returns all registered gateway codes
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.adapters))
	for code := range r.adapters {
		codes = append(codes, code)
	}
	return codes
}
