package engine

import (
	"context"
	"fmt"

	"record-serializer/internal/common"
	"record-serializer/internal/mapping"
	"record-serializer/internal/record"
)

// MatchDomain evaluates the mapping's match domain against attribute
// values and returns the matching records.
func (e *Engine) MatchDomain(ctx context.Context, m *mapping.Mapping, values map[string]any) ([]record.Ref, error) {
	domain, err := m.Domain.Evaluate(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}

	return e.store.Search(ctx, m.Model.Name, domain)
}

// CountMatching returns how many records the match domain selects.
func (e *Engine) CountMatching(ctx context.Context, m *mapping.Mapping, values map[string]any) (int, error) {
	refs, err := e.MatchDomain(ctx, m, values)
	if err != nil {
		return 0, err
	}

	return len(refs), nil
}

// ImportDeserialized writes deserialized values to the store. A single
// object is treated as a list of one. Each object updates every record its
// match domain selects; when nothing matches it creates a record if create
// is set and is skipped otherwise. The result is the union of touched
// records in first-seen order.
func (e *Engine) ImportDeserialized(ctx context.Context, m *mapping.Mapping, values any, create bool) ([]record.Ref, error) {
	items, ok := asList(values)
	if !ok {
		items = []any{values}
	}

	out := make([]record.Ref, 0, len(items))

	for _, item := range items {
		vals, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects attribute values, got %s", ErrInvalidPayloadShape, m.Name, describe(item))
		}

		refs, err := e.MatchDomain(ctx, m, vals)
		if err != nil {
			return nil, err
		}

		switch {
		case !common.IsEmpty(refs):
			writable, err := e.resolveWritable(ctx, m, vals)
			if err != nil {
				return nil, err
			}

			for _, ref := range refs {
				if err := e.store.Write(ctx, ref, writable); err != nil {
					return nil, err
				}
			}

			e.logger.Debug().Str("mapping", m.Name).Int("records", len(refs)).Msg("updated matching records")
		case create:
			writable, err := e.resolveWritable(ctx, m, vals)
			if err != nil {
				return nil, err
			}

			ref, err := e.store.Create(ctx, m.Model.Name, writable)
			if err != nil {
				return nil, err
			}

			refs = []record.Ref{ref}

			e.logger.Debug().Str("mapping", m.Name).Stringer("record", ref).Msg("created record")
		default:
			e.logger.Debug().Str("mapping", m.Name).Msg("no match, skipped")

			continue
		}

		out = append(out, refs...)
	}

	return common.Unique(out), nil
}

// Import deserializes a payload object or list and imports the result.
func (e *Engine) Import(ctx context.Context, m *mapping.Mapping, payload any, create bool) ([]record.Ref, error) {
	if _, ok := asList(payload); ok {
		values, err := e.DeserializeList(ctx, m, payload)
		if err != nil {
			return nil, err
		}

		return e.ImportDeserialized(ctx, m, values, create)
	}

	values, err := e.Deserialize(ctx, m, payload)
	if err != nil {
		return nil, err
	}

	return e.ImportDeserialized(ctx, m, values, create)
}

// resolveWritable turns deserialized values into a value map the store can
// write. Nested objects are imported first: a single relation becomes the
// id of the record it resolves to, a to-many relation a clear command
// followed by links to matched records and creates for the rest.
func (e *Engine) resolveWritable(ctx context.Context, m *mapping.Mapping, values map[string]any) (map[string]any, error) {
	writable := make(map[string]any, len(values))

	for _, key := range sortedKeys(values) {
		value := values[key]

		if !isComposite(value) {
			if _, ok := m.Model.Attribute(key); !ok {
				e.logger.Debug().Str("mapping", m.Name).Str("key", key).Msg("dropped value without attribute")

				continue
			}

			writable[key] = value

			continue
		}

		f, ok := m.FieldByAttribute(key)
		if !ok || !f.Importing {
			continue
		}

		resolved, err := e.resolveRelation(ctx, m, f, value)
		if err != nil {
			return nil, err
		}

		writable[key] = resolved
	}

	return writable, nil
}

func (e *Engine) resolveRelation(ctx context.Context, m *mapping.Mapping, f *mapping.Field, value any) (any, error) {
	kind := f.Attribute.Kind

	switch {
	case kind.IsRelational() && f.Related == nil:
		return nil, e.fieldError(m, f, ErrMissingRelatedMapping)
	case kind == record.KindMany2One:
		nested, ok := value.(map[string]any)
		if !ok {
			return nil, &FieldError{Mapping: m.Name, Key: f.Key(), Kind: kind, Err: fmt.Errorf("%w: expected an object, got %s", ErrInvalidPayloadShape, describe(value))}
		}

		refs, err := e.ImportDeserialized(ctx, f.Related, nested, true)
		if err != nil {
			return nil, err
		}

		if common.IsMultiple(refs) {
			return nil, &FieldError{Mapping: m.Name, Key: f.Key(), Kind: kind, Err: fmt.Errorf("%w: %d records", ErrAmbiguousMatch, len(refs))}
		}

		if ref, ok := common.First(refs); ok {
			return ref.ID, nil
		}

		return nil, nil
	case kind.IsToMany():
		items, ok := asList(value)
		if !ok {
			return nil, &FieldError{Mapping: m.Name, Key: f.Key(), Kind: kind, Err: fmt.Errorf("%w: expected a list, got %s", ErrInvalidPayloadShape, describe(value))}
		}

		commands := []record.Command{record.Clear()}

		for _, item := range items {
			nested, ok := item.(map[string]any)
			if !ok {
				return nil, &FieldError{Mapping: m.Name, Key: f.Key(), Kind: kind, Err: fmt.Errorf("%w: expected an object, got %s", ErrInvalidPayloadShape, describe(item))}
			}

			found, err := e.ImportDeserialized(ctx, f.Related, nested, false)
			if err != nil {
				return nil, err
			}

			if len(found) > 0 {
				for _, ref := range found {
					commands = append(commands, record.Link(ref.ID))
				}

				continue
			}

			sub, err := e.resolveWritable(ctx, f.Related, nested)
			if err != nil {
				return nil, err
			}

			commands = append(commands, record.Create(sub))
		}

		return commands, nil
	default:
		return nil, e.fieldError(m, f, ErrUnsupportedFieldType)
	}
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any, []map[string]any:
		return true
	default:
		return false
	}
}
