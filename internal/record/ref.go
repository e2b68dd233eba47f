package record

import (
	"fmt"

	"github.com/google/uuid"
)

// Ref identifies one record. The zero Ref stands for "no record".
type Ref struct {
	Model string
	ID    uuid.UUID
}

// NewRef returns a reference to the record id of the given type.
func NewRef(model string, id uuid.UUID) Ref {
	return Ref{Model: model, ID: id}
}

// IsZero reports whether r references no record.
func (r Ref) IsZero() bool {
	return r.ID == uuid.Nil
}

// String returns "model,id", or an empty string for the zero Ref.
func (r Ref) String() string {
	if r.IsZero() {
		return ""
	}

	return fmt.Sprintf("%s,%s", r.Model, r.ID)
}

// IDs returns the ids of refs in order.
func IDs(refs []Ref) []uuid.UUID {
	ids := make([]uuid.UUID, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}

	return ids
}
