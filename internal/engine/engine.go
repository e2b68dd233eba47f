package engine

import (
	"github.com/rs/zerolog"

	"record-serializer/internal/mapping"
	"record-serializer/internal/record"
)

// Engine runs transforms against a record store. It keeps no state between
// calls and is safe for concurrent use.
type Engine struct {
	store  record.Store
	logger zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine over the given store.
func New(store record.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Store returns the record store the engine works on.
func (e *Engine) Store() record.Store {
	return e.store
}

// policy holds the empty-value and cycle options of the mapping a call
// started on. They apply to the whole recursion.
type policy struct {
	includeEmptyKeys bool
	raiseOnDuplicate bool
}

func policyOf(m *mapping.Mapping) policy {
	return policy{
		includeEmptyKeys: m.IncludeEmptyKeys,
		raiseOnDuplicate: m.RaiseOnDuplicate,
	}
}

// empty is the value of an absent or cut-off record.
func (p policy) empty() map[string]any {
	if p.includeEmptyKeys {
		return map[string]any{}
	}

	return nil
}

// visit is one step of the path from the root record to the current one.
// Paths are immutable, so each branch extends its own copy.
type visit struct {
	ref     record.Ref
	mapping *mapping.Mapping
	parent  *visit
}

func (v *visit) contains(ref record.Ref, m *mapping.Mapping) bool {
	for ; v != nil; v = v.parent {
		if v.ref == ref && v.mapping == m {
			return true
		}
	}

	return false
}

func (v *visit) push(ref record.Ref, m *mapping.Mapping) *visit {
	return &visit{ref: ref, mapping: m, parent: v}
}

func (e *Engine) fieldError(m *mapping.Mapping, f *mapping.Field, err error) error {
	fe := &FieldError{Mapping: m.Name, Key: f.Key(), Kind: f.Attribute.Kind, Err: err}

	e.logger.Error().
		Str("mapping", m.Name).
		Str("key", fe.Key).
		Stringer("kind", fe.Kind).
		Err(err).
		Msg("cannot transform field")

	return fe
}
