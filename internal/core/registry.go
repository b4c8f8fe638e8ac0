package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]*Mapping)
	registryMu sync.RWMutex
)

// Register adds a mapping profile to the registry.
// Panics if a profile with the same name is already registered or the
// profile's key is not one of its fields.
func Register(m *Mapping) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[m.Name]; exists {
		panic(fmt.Sprintf("profile already registered: %s", m.Name))
	}
	if _, ok := m.Field(m.Key); !ok {
		panic(fmt.Sprintf("profile %s: key %q is not a field", m.Name, m.Key))
	}

	registry[m.Name] = m
}

// Get returns a profile by name.
// Returns false if not found.
func Get(name string) (*Mapping, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	m, ok := registry[name]
	return m, ok
}

// All returns all registered profiles sorted by name.
func All() []*Mapping {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]*Mapping, 0, len(registry))
	for _, m := range registry {
		result = append(result, m)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Names returns the registered profile names, sorted.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = m.Name
	}
	return names
}

// ProfileCount returns the number of registered profiles.
func ProfileCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered profiles.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]*Mapping)
}
