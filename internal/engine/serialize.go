package engine

import (
	"context"
	"fmt"
	"time"

	"record-serializer/internal/mapping"
	"record-serializer/internal/record"
)

// Bindings exposed to export hooks and snippets.
const (
	RecordVar   = "record"
	ContentVar  = "content"
	SyncDateKey = "sync_date"
)

// Serialize converts one record into a map through the mapping. A zero
// reference yields the empty value: an empty map when the mapping includes
// empty keys, nil otherwise.
func (e *Engine) Serialize(ctx context.Context, m *mapping.Mapping, ref record.Ref) (map[string]any, error) {
	return e.serialize(ctx, m, ref, nil, policyOf(m))
}

// SerializeAll converts records in order. Records cut off by a cycle keep
// their slot as an empty value.
func (e *Engine) SerializeAll(ctx context.Context, m *mapping.Mapping, refs []record.Ref) ([]any, error) {
	p := policyOf(m)
	out := make([]any, 0, len(refs))

	for _, ref := range refs {
		item, err := e.serialize(ctx, m, ref, nil, p)
		if err != nil {
			return nil, err
		}

		if item == nil {
			out = append(out, nil)
		} else {
			out = append(out, item)
		}
	}

	return out, nil
}

func (e *Engine) serialize(ctx context.Context, m *mapping.Mapping, ref record.Ref, path *visit, p policy) (map[string]any, error) {
	if ref.IsZero() {
		return p.empty(), nil
	}

	if path.contains(ref, m) {
		if p.raiseOnDuplicate {
			return nil, fmt.Errorf("%w: %s through mapping %s", ErrLoopDetected, ref, m.Name)
		}

		e.logger.Debug().Str("mapping", m.Name).Stringer("record", ref).Msg("cycle cut off")

		return p.empty(), nil
	}

	path = path.push(ref, m)
	result := make(map[string]any, len(m.Fields))

	for _, f := range m.Fields {
		if !f.Exporting {
			continue
		}

		value, err := e.serializeField(ctx, m, f, ref, path, p)
		if err != nil {
			return nil, err
		}

		if value != nil {
			result[f.Key()] = value
		}
	}

	if m.UseSnippet {
		var err error

		result, err = e.runExport(ctx, m, ref, result)
		if err != nil {
			return nil, err
		}
	}

	if m.UseSyncDate {
		modified, err := e.store.LastModified(ctx, ref)
		if err != nil {
			return nil, err
		}

		result[SyncDateKey] = record.FormatTimestamp(modified)
	}

	return result, nil
}

func (e *Engine) serializeField(
	ctx context.Context, m *mapping.Mapping, f *mapping.Field, ref record.Ref, path *visit, p policy,
) (any, error) {
	kind := f.Attribute.Kind

	switch {
	case kind.IsRelational() && f.Related == nil:
		return nil, e.fieldError(m, f, ErrMissingRelatedMapping)
	case !kind.IsScalar() && !kind.IsRelational():
		return nil, e.fieldError(m, f, ErrUnsupportedFieldType)
	}

	value, err := e.store.Read(ctx, ref, f.Attribute.Name)
	if err != nil {
		return nil, err
	}

	switch kind {
	case record.KindDate, record.KindDatetime:
		t, ok := value.(time.Time)
		if !ok || t.IsZero() {
			return nil, nil
		}

		if kind == record.KindDate {
			return record.FormatDate(t), nil
		}

		return record.FormatDatetime(t), nil
	case record.KindMany2One:
		target, _ := value.(record.Ref)

		out, err := e.serialize(ctx, f.Related, target, path, p)
		if err != nil || out == nil {
			return nil, err
		}

		return out, nil
	case record.KindOne2Many, record.KindMany2Many:
		targets, _ := value.([]record.Ref)
		items := make([]any, 0, len(targets))

		for _, target := range targets {
			out, err := e.serialize(ctx, f.Related, target, path, p)
			if err != nil {
				return nil, err
			}

			if out != nil {
				items = append(items, out)
			}
		}

		if len(items) == 0 && !p.includeEmptyKeys {
			return nil, nil
		}

		return items, nil
	default:
		return value, nil
	}
}

func (e *Engine) runExport(ctx context.Context, m *mapping.Mapping, ref record.Ref, result map[string]any) (map[string]any, error) {
	if m.ExportHook == nil && m.ExportSnippet == nil {
		return result, nil
	}

	values, err := e.recordValues(ctx, m.Model, ref)
	if err != nil {
		return nil, err
	}

	bindings := map[string]any{RecordVar: values}

	if m.ExportHook != nil {
		result, err = m.ExportHook(ctx, bindings, result)
		if err != nil {
			return nil, fmt.Errorf("%s: export hook: %w", m.Name, err)
		}

		if result == nil {
			result = make(map[string]any)
		}
	}

	if m.ExportSnippet != nil {
		result, err = m.ExportSnippet.Run(bindings, result)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
	}

	return result, nil
}

// recordValues reads every attribute of a record. Relations stay
// references; temporal values are formatted the way exports show them.
func (e *Engine) recordValues(ctx context.Context, rt *record.RecordType, ref record.Ref) (map[string]any, error) {
	values := make(map[string]any, len(rt.Attributes))

	for i := range rt.Attributes {
		attr := &rt.Attributes[i]

		value, err := e.store.Read(ctx, ref, attr.Name)
		if err != nil {
			return nil, err
		}

		if t, ok := value.(time.Time); ok {
			switch {
			case t.IsZero():
				value = nil
			case attr.Kind == record.KindDate:
				value = record.FormatDate(t)
			default:
				value = record.FormatDatetime(t)
			}
		}

		values[attr.Name] = value
	}

	return values, nil
}
