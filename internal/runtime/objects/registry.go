package objects

import (
	"fmt"
	"sync"

	"github.com/coatyio/coaty-go/internal/runtime/errors"
)

// Factory produces a fresh, zero-valued instance of a concrete object shape
// for the codec to decode into.
type Factory func() Object

// Registry maps objectType discriminator strings to factories for the
// application's object family. Lookup falls back to the built-in family for
// unregistered discriminators, and finally to a core-type keyed lookup for
// payloads whose objectType is unknown entirely.
type Registry struct {
	mu           sync.RWMutex
	byObjectType map[string]Factory
}

// NewRegistry creates an empty application object family.
func NewRegistry() *Registry {
	return &Registry{byObjectType: make(map[string]Factory)}
}

// Register adds a factory for the given objectType discriminator. A second
// registration under the same discriminator fails with
// ErrInvalidConfiguration, leaving the first intact.
func (r *Registry) Register(objectType string, factory Factory) error {
	if objectType == "" {
		return fmt.Errorf("%w: object type must not be empty", errors.ErrInvalidConfiguration)
	}
	if factory == nil {
		return fmt.Errorf("%w: factory for %q must not be nil", errors.ErrInvalidConfiguration, objectType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byObjectType[objectType]; exists {
		return fmt.Errorf("%w: object type %q is already registered",
			errors.ErrInvalidConfiguration, objectType)
	}
	r.byObjectType[objectType] = factory
	return nil
}

// MustRegister is Register panicking on error, for startup wiring.
func (r *Registry) MustRegister(objectType string, factory Factory) {
	if err := r.Register(objectType, factory); err != nil {
		panic(err)
	}
}

func (r *Registry) lookup(objectType string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byObjectType[objectType]
	return f, ok
}

// resolve picks the factory for a discriminator pair: application family
// first, then the built-in family by objectType, then the built-in shape of
// the core type.
func (r *Registry) resolve(objectType string, coreType CoreType) (Factory, bool) {
	if r != nil {
		if f, ok := r.lookup(objectType); ok {
			return f, true
		}
	}
	if f, ok := builtinByObjectType[objectType]; ok {
		return f, true
	}
	if coreType.IsValid() {
		return builtinFactory(coreType), true
	}
	return nil, false
}

// builtinByObjectType holds the framework's own object family, keyed by the
// "coaty.<CoreType>" discriminators.
var builtinByObjectType = func() map[string]Factory {
	m := make(map[string]Factory, len(coreTypes))
	for ct := range coreTypes {
		m[ct.ObjectType()] = builtinFactory(ct)
	}
	m[CoreTypeComponent.ObjectType()] = func() Object { return &Identity{} }
	return m
}()

func builtinFactory(coreType CoreType) Factory {
	if coreType == CoreTypeComponent {
		return func() Object { return &Identity{} }
	}
	return func() Object { return &CoatyObject{} }
}
