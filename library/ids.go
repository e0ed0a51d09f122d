package library

import "github.com/google/uuid"

// IDGenerator produces opaque identifiers for new entities.
type IDGenerator func() string

// NewID is the default IDGenerator: a random UUID string.
func NewID() string { return uuid.NewString() }
