package record

import (
	"github.com/google/uuid"

	"record-serializer/internal/common"
)

// CommandOp is the operation of a to-many write instruction.
type CommandOp int

const (
	OpCreate CommandOp = iota // create a related record and link it
	OpLink                    // link an existing record
	OpClear                   // unlink every related record
)

// String returns a human-readable name of the operation.
func (o CommandOp) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpLink:
		return "link"
	case OpClear:
		return "clear"
	default:
		return common.UnknownStr
	}
}

// Command is one instruction applied to a to-many attribute on write.
type Command struct {
	Op     CommandOp
	ID     uuid.UUID      // OpLink
	Values map[string]any // OpCreate
}

// Clear unlinks every record currently related through the attribute.
func Clear() Command {
	return Command{Op: OpClear}
}

// Link relates an existing record.
func Link(id uuid.UUID) Command {
	return Command{Op: OpLink, ID: id}
}

// Create creates a related record from values and relates it.
func Create(values map[string]any) Command {
	return Command{Op: OpCreate, Values: values}
}
