package record

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownModel is returned for record types missing from the catalog.
	ErrUnknownModel = errors.New("unknown record type")
	// ErrUnknownAttribute is returned for attributes missing from a record type.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrInvalidValue is returned when a value cannot be stored in an attribute.
	ErrInvalidValue = errors.New("invalid attribute value")
)

// Store is the record store the serializer reads from and writes to.
type Store interface {
	// Catalog returns the record types the store knows about.
	Catalog() *Catalog
	// Search returns the records of the given type matching the domain, in
	// creation order.
	Search(ctx context.Context, model string, domain Domain) ([]Ref, error)
	// Read returns one attribute value of a record.
	Read(ctx context.Context, ref Ref, attr string) (any, error)
	// Create creates a record from attribute values.
	Create(ctx context.Context, model string, values map[string]any) (Ref, error)
	// Write updates attribute values of an existing record.
	Write(ctx context.Context, ref Ref, values map[string]any) error
	// LastModified returns when the record was last created or written.
	LastModified(ctx context.Context, ref Ref) (time.Time, error)
}
