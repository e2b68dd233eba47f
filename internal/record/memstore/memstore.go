// Package memstore provides an in-memory record.Store. It backs tests, the
// preview command and the "memory" store driver.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"record-serializer/internal/common"
	"record-serializer/internal/record"
)

type entry struct {
	ref      record.Ref
	seq      int64
	values   map[string]any
	modified time.Time
}

// Store is an in-memory record store safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	catalog *record.Catalog
	records map[uuid.UUID]*entry
	seq     int64
	now     func() time.Time
	journal []func() // undoes the changes of the running Create or Write
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for last-modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store for the record types of the catalog.
func New(catalog *record.Catalog, opts ...Option) *Store {
	s := &Store{
		catalog: catalog,
		records: make(map[uuid.UUID]*entry),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Catalog implements record.Store.
func (s *Store) Catalog() *record.Catalog {
	return s.catalog
}

// Search implements record.Store.
func (s *Store) Search(_ context.Context, model string, domain record.Domain) ([]record.Ref, error) {
	if err := domain.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rt := s.catalog.Get(model)
	if rt == nil {
		return nil, fmt.Errorf("%w: %s", record.ErrUnknownModel, model)
	}

	var candidates []*entry

	if ids, ok := domain.IDs(); ok {
		for _, id := range ids {
			if e, found := s.records[id]; found && e.ref.Model == model {
				candidates = append(candidates, e)
			}
		}
	} else {
		for _, e := range s.records {
			if e.ref.Model == model {
				candidates = append(candidates, e)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].seq < candidates[j].seq })

	refs := make([]record.Ref, 0, len(candidates))

	for _, e := range candidates {
		ok, err := domain.Match(func(field string) (any, error) {
			return s.read(rt, e, field)
		})
		if err != nil {
			return nil, err
		}

		if ok {
			refs = append(refs, e.ref)
		}
	}

	return common.Unique(refs), nil
}

// Read implements record.Store.
func (s *Store) Read(_ context.Context, ref record.Ref, attr string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, rt, err := s.lookup(ref)
	if err != nil {
		return nil, err
	}

	return s.read(rt, e, attr)
}

// LastModified implements record.Store.
func (s *Store) LastModified(_ context.Context, ref record.Ref) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, _, err := s.lookup(ref)
	if err != nil {
		return time.Time{}, err
	}

	return e.modified, nil
}

// Create implements record.Store.
func (s *Store) Create(_ context.Context, model string, values map[string]any) (record.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ref record.Ref

	err := s.atomically(func() error {
		var err error
		ref, err = s.create(model, values)

		return err
	})
	if err != nil {
		return record.Ref{}, err
	}

	return ref, nil
}

// Write implements record.Store.
func (s *Store) Write(_ context.Context, ref record.Ref, values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, rt, err := s.lookup(ref)
	if err != nil {
		return err
	}

	return s.atomically(func() error { return s.write(rt, e, values) })
}

// Len returns the number of records of the given type.
func (s *Store) Len(model string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0

	for _, e := range s.records {
		if e.ref.Model == model {
			n++
		}
	}

	return n
}

// atomically runs fn and reverts every change it made when it fails,
// nested creates and relinked children included.
func (s *Store) atomically(fn func() error) error {
	s.journal = nil

	err := fn()
	if err != nil {
		for i := len(s.journal) - 1; i >= 0; i-- {
			s.journal[i]()
		}
	}

	s.journal = nil

	return err
}

func (s *Store) track(undo func()) {
	s.journal = append(s.journal, undo)
}

// setValue changes one value of a related record and journals the change.
func (s *Store) setValue(e *entry, name string, v any) {
	old, had := e.values[name]
	modified := e.modified

	s.track(func() {
		if had {
			e.values[name] = old
		} else {
			delete(e.values, name)
		}

		e.modified = modified
	})

	e.values[name] = v
	e.modified = s.now()
}

func (s *Store) lookup(ref record.Ref) (*entry, *record.RecordType, error) {
	e, ok := s.records[ref.ID]
	if !ok || e.ref.Model != ref.Model {
		return nil, nil, fmt.Errorf("%w: %s", record.ErrNotFound, ref)
	}

	rt := s.catalog.Get(ref.Model)
	if rt == nil {
		return nil, nil, fmt.Errorf("%w: %s", record.ErrUnknownModel, ref.Model)
	}

	return e, rt, nil
}

func (s *Store) read(rt *record.RecordType, e *entry, name string) (any, error) {
	attr, ok := rt.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", record.ErrUnknownAttribute, rt.Name, name)
	}

	switch {
	case attr.Name == record.AttrID:
		return e.ref.ID.String(), nil
	case attr.Name == record.AttrWriteDate:
		return e.modified, nil
	case attr.Kind == record.KindMany2One:
		id, _ := e.values[attr.Name].(uuid.UUID)
		if id == uuid.Nil {
			return record.Ref{}, nil
		}

		return record.NewRef(attr.Relation, id), nil
	case attr.Kind == record.KindOne2Many:
		return s.children(attr, e.ref.ID), nil
	case attr.Kind == record.KindMany2Many:
		ids, _ := e.values[attr.Name].([]uuid.UUID)
		refs := make([]record.Ref, 0, len(ids))

		for _, id := range ids {
			refs = append(refs, record.NewRef(attr.Relation, id))
		}

		return refs, nil
	case attr.Kind == record.KindBoolean:
		b, _ := e.values[attr.Name].(bool)
		return b, nil
	default:
		return e.values[attr.Name], nil
	}
}

// children returns the records whose inverse many2one points at owner.
func (s *Store) children(attr *record.Attribute, owner uuid.UUID) []record.Ref {
	var found []*entry

	for _, e := range s.records {
		if e.ref.Model != attr.Relation {
			continue
		}

		if id, _ := e.values[attr.Inverse].(uuid.UUID); id == owner {
			found = append(found, e)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	refs := make([]record.Ref, len(found))
	for i, e := range found {
		refs[i] = e.ref
	}

	return refs
}

func (s *Store) create(model string, values map[string]any) (record.Ref, error) {
	rt := s.catalog.Get(model)
	if rt == nil {
		return record.Ref{}, fmt.Errorf("%w: %s", record.ErrUnknownModel, model)
	}

	s.seq++
	e := &entry{
		ref:      record.NewRef(model, uuid.New()),
		seq:      s.seq,
		values:   make(map[string]any),
		modified: s.now(),
	}
	s.records[e.ref.ID] = e
	s.track(func() { delete(s.records, e.ref.ID) })

	if err := s.write(rt, e, values); err != nil {
		return record.Ref{}, err
	}

	return e.ref, nil
}

func (s *Store) write(rt *record.RecordType, e *entry, values map[string]any) error {
	staged := maps.Clone(e.values)

	var deferred []func() error

	for _, name := range slices.Sorted(maps.Keys(values)) {
		attr, ok := rt.Attribute(name)
		if !ok {
			return fmt.Errorf("%w: %s.%s", record.ErrUnknownAttribute, rt.Name, name)
		}

		if attr.Readonly {
			continue
		}

		switch attr.Kind {
		case record.KindMany2One:
			id, err := record.NormalizeID(values[name])
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			if id != uuid.Nil {
				if _, ok := s.records[id]; !ok {
					return fmt.Errorf("%s: %w: %s", name, record.ErrNotFound, id)
				}
			}

			staged[name] = id
		case record.KindOne2Many, record.KindMany2Many:
			cmds, err := record.NormalizeCommands(values[name])
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			deferred = append(deferred, func() error { return s.applyCommands(attr, e, staged, cmds) })
		default:
			v, err := record.NormalizeValue(attr, values[name])
			if err != nil {
				return err
			}

			staged[name] = v
		}
	}

	old, modified := e.values, e.modified
	s.track(func() { e.values, e.modified = old, modified })

	e.values = staged

	// To-many commands may create records pointing back at e, so they run
	// once the owner's own values are in place.
	for _, apply := range deferred {
		if err := apply(); err != nil {
			return err
		}
	}

	e.modified = s.now()

	return nil
}

func (s *Store) applyCommands(attr *record.Attribute, owner *entry, staged map[string]any, cmds []record.Command) error {
	for _, cmd := range cmds {
		switch cmd.Op {
		case record.OpClear:
			if attr.Kind == record.KindOne2Many {
				for _, child := range s.children(attr, owner.ref.ID) {
					s.setValue(s.records[child.ID], attr.Inverse, uuid.Nil)
				}
			} else {
				staged[attr.Name] = []uuid.UUID{}
			}
		case record.OpLink:
			if err := s.link(attr, owner, staged, cmd.ID); err != nil {
				return err
			}
		case record.OpCreate:
			values := maps.Clone(cmd.Values)
			if values == nil {
				values = make(map[string]any)
			}

			if attr.Kind == record.KindOne2Many {
				values[attr.Inverse] = owner.ref.ID
			}

			ref, err := s.create(attr.Relation, values)
			if err != nil {
				return fmt.Errorf("%s: %w", attr.Name, err)
			}

			if attr.Kind == record.KindMany2Many {
				if err := s.link(attr, owner, staged, ref.ID); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (s *Store) link(attr *record.Attribute, owner *entry, staged map[string]any, id uuid.UUID) error {
	target, ok := s.records[id]
	if !ok || target.ref.Model != attr.Relation {
		return fmt.Errorf("%s: %w: %s", attr.Name, record.ErrNotFound, id)
	}

	if attr.Kind == record.KindOne2Many {
		s.setValue(target, attr.Inverse, owner.ref.ID)
		return nil
	}

	ids, _ := staged[attr.Name].([]uuid.UUID)
	if !slices.Contains(ids, id) {
		staged[attr.Name] = append(slices.Clone(ids), id)
	}

	return nil
}
