package kernel

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ID is the opaque identifier of identity-bearing objects.
type ID string

// IDGenerator produces a new unique ID on every call.
type IDGenerator func() ID

// String returns the ID as a plain string.
func (id ID) String() string {
	return string(id)
}

// IsEmpty reports whether the ID is the zero value.
func (id ID) IsEmpty() bool {
	return id == ""
}

// NewUUID generates a random (version 4) UUID based ID. It is the default IDGenerator.
func NewUUID() ID {
	return ID(uuid.NewString())
}

// NanoID generates a URL-friendly 21 character nanoid based ID.
func NanoID() ID {
	return ID(gonanoid.Must())
}
