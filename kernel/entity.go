package kernel

import (
	"fmt"
)

// IDAttribute is the key NewEntityFromAttributes reads the identifier from.
const IDAttribute = "id"

// Attributes is an untyped attribute bundle.
type Attributes = map[string]any

// Entity is an Identity carrying an attribute bundle of type T.
// Like Identity, two entities are equal iff their IDs are equal.
type Entity[T any] struct {
	Identity
	props T
}

// NewEntity creates an Entity holding a private copy of props.
func NewEntity[T any](props T, options ...Option) Entity[T] {
	return Entity[T]{
		Identity: NewIdentity(options...),
		props:    deepCopy(props),
	}
}

// NewEntityFromAttributes creates an Entity from an untyped bundle.
//
// If attrs contains IDAttribute, its value becomes the ID and is not part of the stored bundle,
// otherwise an ID is generated. The given map is never modified.
func NewEntityFromAttributes(attrs Attributes, options ...Option) Entity[Attributes] {
	props := deepCopy(attrs)
	if props == nil {
		props = Attributes{}
	}

	if raw, ok := props[IDAttribute]; ok {
		delete(props, IDAttribute)

		if id := idFromAttribute(raw); !id.IsEmpty() {
			options = append(options, WithID(id))
		}
	}

	return Entity[Attributes]{
		Identity: NewIdentity(options...),
		props:    props,
	}
}

// Props returns a copy of the attribute bundle.
func (e Entity[T]) Props() T {
	return deepCopy(e.props)
}

func idFromAttribute(raw any) ID {
	switch v := raw.(type) {
	case nil:
		return ""
	case ID:
		return v
	case string:
		return ID(v)
	case fmt.Stringer:
		return ID(v.String())
	default:
		return ID(fmt.Sprint(v))
	}
}
