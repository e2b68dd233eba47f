package record

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Canonical string forms of temporal values.
const (
	DateFormat     = "2006-01-02"
	DatetimeFormat = "2006-01-02 15:04:05"
)

// FormatDate renders a date in its canonical form.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// FormatDatetime renders a timestamp in its canonical form (UTC, second precision).
func FormatDatetime(t time.Time) string {
	return t.UTC().Format(DatetimeFormat)
}

// FormatTimestamp renders a timestamp as "YYYY-MM-DD HH:MM:SS" followed by
// ".ffffff" when the microsecond part is not zero.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	s := t.Format(DatetimeFormat)

	if us := t.Nanosecond() / int(time.Microsecond); us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}

	return s
}

// ParseDate parses a date. Longer strings are cut to their date part.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateFormat) {
		s = s[:len(DateFormat)]
	}

	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidValue, s)
	}

	return t, nil
}

// ParseDatetime parses a timestamp and converts it to UTC at second
// precision. A bare date is taken as midnight. Zone offsets are applied;
// any other trailing text after the seconds is dropped.
func ParseDatetime(s string) (time.Time, error) {
	if len(s) <= len(DateFormat) {
		return ParseDate(s)
	}

	if t, err := ParseTimestamp(s); err == nil {
		return t.Truncate(time.Second), nil
	}

	if len(s) > len(DatetimeFormat) {
		if strings.ContainsAny(s[len(DatetimeFormat):], "Z+-") {
			return time.Time{}, fmt.Errorf("%w: datetime %q", ErrInvalidValue, s)
		}

		s = s[:len(DatetimeFormat)]
	}

	t, err := time.Parse(DatetimeFormat, strings.Replace(s, "T", " ", 1))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: datetime %q", ErrInvalidValue, s)
	}

	return t, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	DateFormat,
}

// ParseTimestamp parses an ISO-8601-like timestamp keeping its full precision.
// Space and "T" separators, fractions and zone offsets are accepted.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrInvalidValue, s)
}

// NormalizeValue converts a scalar value into the representation stored for
// the attribute. Relational attributes are handled by the stores.
func NormalizeValue(attr *Attribute, v any) (any, error) {
	if v == nil {
		if attr.Kind == KindBoolean {
			return false, nil
		}

		return nil, nil
	}

	switch attr.Kind {
	case KindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindChar, KindText, KindHTML:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindSelection:
		s, ok := v.(string)
		if !ok {
			break
		}

		if len(attr.Selection) > 0 && !slices.Contains(attr.Selection, s) {
			return nil, fmt.Errorf("%w: %q is not a choice of %s", ErrInvalidValue, s, attr.Name)
		}

		return s, nil
	case KindInteger:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case KindFloat, KindMonetary:
		if f, ok := toFloat64(v); ok {
			return f, nil
		}
	case KindDate:
		switch val := v.(type) {
		case time.Time:
			return time.Date(val.Year(), val.Month(), val.Day(), 0, 0, 0, 0, time.UTC), nil
		case string:
			return ParseDate(val)
		}
	case KindDatetime:
		switch val := v.(type) {
		case time.Time:
			return val.UTC(), nil
		case string:
			return ParseDatetime(val)
		}
	case KindBinary:
		switch val := v.(type) {
		case []byte:
			return val, nil
		case string:
			return []byte(val), nil
		}
	default:
	}

	return nil, fmt.Errorf("%w: %T for %s attribute %s", ErrInvalidValue, v, attr.Kind, attr.Name)
}

// NormalizeID converts a many2one write value into a record id. uuid.Nil
// means "no record".
func NormalizeID(v any) (uuid.UUID, error) {
	switch val := v.(type) {
	case nil:
		return uuid.Nil, nil
	case uuid.UUID:
		return val, nil
	case Ref:
		return val.ID, nil
	case string:
		if val == "" {
			return uuid.Nil, nil
		}

		id, err := uuid.Parse(val)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: record id %q", ErrInvalidValue, val)
		}

		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: %T as record id", ErrInvalidValue, v)
	}
}

// NormalizeCommands converts a to-many write value into commands. A plain
// list of ids replaces the current relation.
func NormalizeCommands(v any) ([]Command, error) {
	switch val := v.(type) {
	case nil:
		return []Command{Clear()}, nil
	case []Command:
		return val, nil
	case []Ref:
		return replaceWith(IDs(val)), nil
	case []uuid.UUID:
		return replaceWith(val), nil
	case []string:
		ids := make([]uuid.UUID, 0, len(val))

		for _, s := range val {
			id, err := NormalizeID(s)
			if err != nil {
				return nil, err
			}

			ids = append(ids, id)
		}

		return replaceWith(ids), nil
	case []any:
		ids := make([]uuid.UUID, 0, len(val))

		for _, item := range val {
			id, err := NormalizeID(item)
			if err != nil {
				return nil, err
			}

			ids = append(ids, id)
		}

		return replaceWith(ids), nil
	default:
		return nil, fmt.Errorf("%w: %T for a to-many attribute", ErrInvalidValue, v)
	}
}

func replaceWith(ids []uuid.UUID) []Command {
	cmds := make([]Command, 0, len(ids)+1)
	cmds = append(cmds, Clear())

	for _, id := range ids {
		if id != uuid.Nil {
			cmds = append(cmds, Link(id))
		}
	}

	return cmds
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		if f := float64(n); f == math.Trunc(f) {
			return int64(f), true
		}
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}

	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}

	if i, ok := toInt64(v); ok {
		return float64(i), true
	}

	return 0, false
}
