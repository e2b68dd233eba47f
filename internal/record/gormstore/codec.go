package gormstore

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"record-serializer/internal/record"
)

// encode converts a normalized scalar into its JSON document form.
func encode(attr *record.Attribute, v any) any {
	switch val := v.(type) {
	case time.Time:
		if attr.Kind == record.KindDate {
			return record.FormatDate(val)
		}

		return val.UTC().Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	default:
		return v
	}
}

// decode converts a stored scalar back into the value Read returns.
func decode(attr *record.Attribute, raw any) (any, error) {
	if raw == nil {
		return record.NormalizeValue(attr, nil)
	}

	s, isString := raw.(string)

	switch attr.Kind {
	case record.KindDate:
		if isString {
			return record.ParseDate(s)
		}
	case record.KindDatetime:
		if isString {
			return record.ParseTimestamp(s)
		}
	case record.KindBinary:
		if isString {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("%w: binary %s: %w", record.ErrInvalidValue, attr.Name, err)
			}

			return b, nil
		}
	default:
		return record.NormalizeValue(attr, raw)
	}

	return nil, fmt.Errorf("%w: stored %T for %s attribute %s", record.ErrInvalidValue, raw, attr.Kind, attr.Name)
}

func decodeID(raw any) uuid.UUID {
	s, _ := raw.(string)
	id, err := uuid.Parse(s)

	if err != nil {
		return uuid.Nil
	}

	return id
}

func decodeIDs(raw any) []uuid.UUID {
	items, _ := raw.([]any)
	ids := make([]uuid.UUID, 0, len(items))

	for _, item := range items {
		if id := decodeID(item); id != uuid.Nil {
			ids = append(ids, id)
		}
	}

	return ids
}

func encodeIDs(ids []uuid.UUID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}
