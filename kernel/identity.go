package kernel

import (
	"reflect"
)

// Identifiable is the capability every identity-bearing object has: a stable ID.
type Identifiable interface {
	ID() ID
}

// Identity is an object whose equality is defined by its ID, never by its attributes.
// The ID is assigned exactly once, at construction.
type Identity struct {
	id ID
}

// NewIdentity creates an Identity with the ID supplied via WithID or, if absent, a generated one.
func NewIdentity(options ...Option) Identity {
	config := buildIdentityConfig(options)

	return Identity{id: config.id}
}

// ID returns the identifier.
func (i Identity) ID() ID {
	return i.id
}

// Equals reports whether other is identity-bearing and has the same ID.
//
// Equality is not scoped by concrete type: two different kinds of identity-bearing
// objects sharing an ID compare equal.
func (i Identity) Equals(other any) bool {
	otherIdentifiable, ok := asIdentifiable(other)
	if !ok {
		return false
	}

	return i.id == otherIdentifiable.ID()
}

// SameIdentity reports whether a and b are both identity-bearing and share the same ID.
func SameIdentity(a, b any) bool {
	left, ok := asIdentifiable(a)
	if !ok {
		return false
	}

	right, ok := asIdentifiable(b)
	if !ok {
		return false
	}

	return left.ID() == right.ID()
}

// asIdentifiable is a structural check, so any type exposing ID() ID qualifies,
// however it was constructed. nil and typed nil pointers never qualify.
func asIdentifiable(v any) (Identifiable, bool) {
	if isNil(v) {
		return nil, false
	}

	identifiable, ok := v.(Identifiable)

	return identifiable, ok
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
