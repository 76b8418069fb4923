package nbt

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrRegistryFrozen is returned by Register after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")
	// ErrRegistryFull is returned when all 256 ids are taken.
	ErrRegistryFull = errors.New("registry has no free type ids")
	// ErrTypeBound is returned when a type already owns an id that is not the
	// next free id of the registry it is being added to.
	ErrTypeBound = errors.New("type is bound to another id")
)

var defaultRegistry *Registry

// Default returns the frozen registry holding only the vanilla types.
func Default() *Registry { return defaultRegistry }

// Registry maps wire ids to tag types. A new registry holds the vanilla types
// in their fixed order; custom types are appended after them. Registration
// is not synchronized. Once frozen, a registry is safe for concurrent reads.
type Registry struct {
	types  []*Type
	frozen bool
}

// NewRegistry returns an unfrozen registry preloaded with the vanilla types.
func NewRegistry() *Registry {
	r := &Registry{types: make([]*Type, 0, len(vanillaTypes)+4)}
	r.types = append(r.types, vanillaTypes...)
	return r
}

// Register assigns t the next free id and returns it. Registering a type the
// registry already holds returns its existing id.
func (r *Registry) Register(t *Type) (TypeID, error) {
	if t == nil {
		return 0, errors.New("register nil type")
	}
	if t.bound && int(t.id) < len(r.types) && r.types[t.id] == t {
		return t.id, nil
	}
	if r.frozen {
		return 0, fmt.Errorf("register %s: %w", t.name, ErrRegistryFrozen)
	}
	if len(r.types) > math.MaxUint8 {
		return 0, fmt.Errorf("register %s: %w", t.name, ErrRegistryFull)
	}
	next := TypeID(len(r.types))
	if t.bound && t.id != next {
		return 0, fmt.Errorf("register %s as %d: %w", t, next, ErrTypeBound)
	}
	t.id, t.bound = next, true
	if t.home == nil {
		t.home = r
	}
	r.types = append(r.types, t)
	return next, nil
}

// MustRegister is Register that panics on error, for package init blocks.
func (r *Registry) MustRegister(t *Type) TypeID {
	id, err := r.Register(t)
	if err != nil {
		panic(err)
	}
	return id
}

// Freeze stops further registration and returns r.
func (r *Registry) Freeze() *Registry {
	r.frozen = true
	return r
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen }

// Get returns the type registered under id, or EmptyType when there is none.
func (r *Registry) Get(id TypeID) *Type {
	if t, ok := r.Lookup(id); ok {
		return t
	}
	return EmptyType
}

// Lookup returns the type registered under id.
func (r *Registry) Lookup(id TypeID) (*Type, bool) {
	if int(id) >= len(r.types) {
		return nil, false
	}
	return r.types[id], true
}

// IsRegistered reports whether id is in use.
func (r *Registry) IsRegistered(id TypeID) bool {
	return int(id) < len(r.types)
}

// Contains reports whether t is registered here under its own id.
func (r *Registry) Contains(t *Type) bool {
	return t != nil && t.bound && int(t.id) < len(r.types) && r.types[t.id] == t
}

// Len returns the number of registered types, vanilla ones included.
func (r *Registry) Len() int { return len(r.types) }

// Types returns the registered types ordered by id.
func (r *Registry) Types() []*Type {
	out := make([]*Type, len(r.types))
	copy(out, r.types)
	return out
}
