// Package registry holds the catalog of dataset schemas that content
// generation runs against. The registry is an explicit object handed to its
// consumers rather than package-level state, so tests can build scoped
// fixture registries and the batch engine can share one instance safely.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// NotFoundError reports a lookup against an unregistered schema key. Callers
// branch on it with errors.As to drive "configure this data source first"
// handling.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema not found: %s", e.Key)
}

// Registry maps data-source keys to dataset schemas. The map is read-mostly
// reference data; the RWMutex keeps concurrent batch readers safe against a
// late Register call.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]schemas.DatasetSchema
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{schemas: make(map[string]schemas.DatasetSchema)}
}

// NewWithBuiltins returns a registry seeded with the built-in vendor schemas.
func NewWithBuiltins() *Registry {
	r := New()
	for key, schema := range builtinSchemas() {
		r.Register(key, schema)
	}
	return r
}

// Register inserts or overwrites the schema stored under key. Schemas are
// treated as authoritative as supplied: no internal consistency checks
// (duplicate field names, empty field lists) are performed here. File-based
// registration goes through RegisterFile, which does validate its input.
func (r *Registry) Register(key string, schema schemas.DatasetSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[key] = schema
}

// Get returns the schema registered under key, with a comma-ok absence
// signal. Callers that need an error use Lookup instead.
func (r *Registry) Get(key string) (schemas.DatasetSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[key]
	return s, ok
}

// Lookup returns the schema registered under key or a *NotFoundError naming
// the missing key.
func (r *Registry) Lookup(key string) (schemas.DatasetSchema, error) {
	s, ok := r.Get(key)
	if !ok {
		return schemas.DatasetSchema{}, &NotFoundError{Key: key}
	}
	return s, nil
}

// Keys returns all registered schema keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
