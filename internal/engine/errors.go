package engine

import (
	"errors"
	"fmt"

	"record-serializer/internal/record"
)

var (
	// ErrInvalidPayloadShape is returned when a payload is not the expected
	// object or list of objects.
	ErrInvalidPayloadShape = errors.New("invalid payload shape")
	// ErrUnsupportedFieldType is returned for attribute kinds without a
	// transform rule.
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	// ErrLoopDetected is returned when a cycle is reached and the mapping
	// raises on duplicates.
	ErrLoopDetected = errors.New("loop detected")
	// ErrMissingRelatedMapping is returned when a relational field has no
	// related mapping.
	ErrMissingRelatedMapping = errors.New("missing related mapping")
	// ErrAmbiguousMatch is returned when a single relation resolves to more
	// than one record during import.
	ErrAmbiguousMatch = errors.New("ambiguous match")
)

// FieldError reports a failure to transform one key of a mapping.
type FieldError struct {
	Mapping string
	Key     string
	Kind    record.Kind
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: key %q (%s): %v", e.Mapping, e.Key, e.Kind, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is makes a missing related mapping also count as an unsupported field
// type: without one the field has no transform rule.
func (e *FieldError) Is(target error) bool {
	return target == ErrUnsupportedFieldType && errors.Is(e.Err, ErrMissingRelatedMapping)
}
