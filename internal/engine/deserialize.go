package engine

import (
	"context"
	"fmt"
	"sort"

	"record-serializer/internal/mapping"
	"record-serializer/internal/record"
)

// Deserialize converts a payload object into attribute values keyed by
// attribute name. Keys that match no importing field are ignored.
func (e *Engine) Deserialize(ctx context.Context, m *mapping.Mapping, payload any) (map[string]any, error) {
	content, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects an object, got %s", ErrInvalidPayloadShape, m.Name, describe(payload))
	}

	result := make(map[string]any, len(content))

	for _, key := range sortedKeys(content) {
		f, ok := m.FieldByKey(key)
		if !ok {
			continue
		}

		value, err := e.deserializeField(ctx, m, f, content[key])
		if err != nil {
			return nil, err
		}

		result[f.Attribute.Name] = value
	}

	if m.UseSnippet {
		var err error

		result, err = e.runImport(ctx, m, content, result)
		if err != nil {
			return nil, err
		}
	}

	if m.UseSyncDate {
		if raw, ok := content[SyncDateKey]; ok && raw != nil {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s: %s must be a string", ErrInvalidPayloadShape, m.Name, SyncDateKey)
			}

			t, err := record.ParseTimestamp(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayloadShape, m.Name, err)
			}

			result[SyncDateKey] = t
		}
	}

	return result, nil
}

// DeserializeList converts a list of payload objects.
func (e *Engine) DeserializeList(ctx context.Context, m *mapping.Mapping, payload any) ([]map[string]any, error) {
	items, ok := asList(payload)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a list, got %s", ErrInvalidPayloadShape, m.Name, describe(payload))
	}

	out := make([]map[string]any, 0, len(items))

	for _, item := range items {
		values, err := e.Deserialize(ctx, m, item)
		if err != nil {
			return nil, err
		}

		out = append(out, values)
	}

	return out, nil
}

func (e *Engine) deserializeField(ctx context.Context, m *mapping.Mapping, f *mapping.Field, value any) (any, error) {
	kind := f.Attribute.Kind

	switch {
	case kind.IsRelational() && f.Related == nil:
		return nil, e.fieldError(m, f, ErrMissingRelatedMapping)
	case !kind.IsScalar() && !kind.IsRelational():
		return nil, e.fieldError(m, f, ErrUnsupportedFieldType)
	case value == nil:
		return nil, nil
	}

	switch kind {
	case record.KindDate, record.KindDatetime:
		s, ok := value.(string)
		if !ok {
			return nil, &FieldError{Mapping: m.Name, Key: f.Key(), Kind: kind, Err: fmt.Errorf("%w: expected a string, got %s", ErrInvalidPayloadShape, describe(value))}
		}

		parse := record.ParseDatetime
		if kind == record.KindDate {
			parse = record.ParseDate
		}

		t, err := parse(s)
		if err != nil {
			return nil, &FieldError{Mapping: m.Name, Key: f.Key(), Kind: kind, Err: fmt.Errorf("%w: %w", ErrInvalidPayloadShape, err)}
		}

		return t, nil
	case record.KindMany2One:
		return e.Deserialize(ctx, f.Related, value)
	case record.KindOne2Many, record.KindMany2Many:
		items, ok := asList(value)
		if !ok {
			return nil, &FieldError{Mapping: m.Name, Key: f.Key(), Kind: kind, Err: fmt.Errorf("%w: expected a list, got %s", ErrInvalidPayloadShape, describe(value))}
		}

		out := make([]any, 0, len(items))

		for _, item := range items {
			values, err := e.Deserialize(ctx, f.Related, item)
			if err != nil {
				return nil, err
			}

			out = append(out, values)
		}

		return out, nil
	default:
		return value, nil
	}
}

func (e *Engine) runImport(ctx context.Context, m *mapping.Mapping, content, result map[string]any) (map[string]any, error) {
	bindings := map[string]any{ContentVar: content}

	var err error

	if m.ImportHook != nil {
		result, err = m.ImportHook(ctx, bindings, result)
		if err != nil {
			return nil, fmt.Errorf("%s: import hook: %w", m.Name, err)
		}

		if result == nil {
			result = make(map[string]any)
		}
	}

	if m.ImportSnippet != nil {
		result, err = m.ImportSnippet.Run(bindings, result)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
	}

	return result, nil
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []map[string]any:
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = item
		}

		return out, true
	default:
		return nil, false
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any, []map[string]any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
