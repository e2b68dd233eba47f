package record

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidDomain is returned for malformed domains.
var ErrInvalidDomain = errors.New("invalid domain")

// Supported condition operators.
const (
	OpEq    = "="
	OpNe    = "!="
	OpLt    = "<"
	OpLe    = "<="
	OpGt    = ">"
	OpGe    = ">="
	OpIn    = "in"
	OpNotIn = "not in"
	OpLike  = "like"
	OpILike = "ilike"
)

var operators = []string{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpIn, OpNotIn, OpLike, OpILike}

// IsOperator reports whether op is a supported condition operator.
func IsOperator(op string) bool {
	return slices.Contains(operators, op)
}

// Condition compares one attribute of a record with a value.
type Condition struct {
	Field    string
	Operator string
	Value    any
}

// String renders the condition as a triple.
func (c Condition) String() string {
	return fmt.Sprintf("(%q, %q, %#v)", c.Field, c.Operator, c.Value)
}

// Domain is a conjunction of conditions. An empty domain matches every record.
type Domain []Condition

// Validate checks operators and the value shape of list operators.
func (d Domain) Validate() error {
	for _, c := range d {
		if c.Field == "" {
			return fmt.Errorf("%w: empty field in %s", ErrInvalidDomain, c)
		}

		if !IsOperator(c.Operator) {
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalidDomain, c.Operator)
		}

		if c.Operator == OpIn || c.Operator == OpNotIn {
			if _, ok := toList(c.Value); !ok && c.Value != nil {
				return fmt.Errorf("%w: %q expects a list, got %T", ErrInvalidDomain, c.Operator, c.Value)
			}
		}
	}

	return nil
}

// IDs returns the record ids the domain restricts "id" to, if any condition
// pins it with "=" or "in". Stores use this to narrow their scan.
func (d Domain) IDs() ([]uuid.UUID, bool) {
	for _, c := range d {
		if c.Field != AttrID {
			continue
		}

		switch c.Operator {
		case OpEq:
			id, err := NormalizeID(c.Value)
			if err != nil || id == uuid.Nil {
				return []uuid.UUID{}, true
			}

			return []uuid.UUID{id}, true
		case OpIn:
			items, _ := toList(c.Value)
			ids := make([]uuid.UUID, 0, len(items))

			for _, item := range items {
				if id, err := NormalizeID(item); err == nil && id != uuid.Nil {
					ids = append(ids, id)
				}
			}

			return ids, true
		}
	}

	return nil, false
}

// Getter returns the comparable value of an attribute of one record.
type Getter func(field string) (any, error)

// Match evaluates the domain against one record.
func (d Domain) Match(get Getter) (bool, error) {
	for _, c := range d {
		v, err := get(c.Field)
		if err != nil {
			return false, err
		}

		ok, err := c.match(v)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func (c Condition) match(v any) (bool, error) {
	// A to-many value matches positive operators when any related record
	// does, and negative ones when none does.
	if refs, ok := v.([]Ref); ok {
		positive := c
		negate := false

		switch c.Operator {
		case OpNe:
			positive.Operator, negate = OpEq, true
		case OpNotIn:
			positive.Operator, negate = OpIn, true
		}

		for _, r := range refs {
			ok, err := positive.match(r)
			if err != nil {
				return false, err
			}

			if ok {
				return !negate, nil
			}
		}

		return negate, nil
	}

	switch c.Operator {
	case OpEq:
		return equal(v, c.Value), nil
	case OpNe:
		return !equal(v, c.Value), nil
	case OpLt, OpLe, OpGt, OpGe:
		cmp, ok := compare(v, c.Value)
		if !ok {
			return false, nil
		}

		switch c.Operator {
		case OpLt:
			return cmp < 0, nil
		case OpLe:
			return cmp <= 0, nil
		case OpGt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case OpIn, OpNotIn:
		items, _ := toList(c.Value)
		found := slices.ContainsFunc(items, func(item any) bool { return equal(v, item) })

		return found == (c.Operator == OpIn), nil
	case OpLike, OpILike:
		s, ok := v.(string)
		pattern, pok := c.Value.(string)

		if !ok || !pok {
			return false, nil
		}

		if c.Operator == OpILike {
			s, pattern = strings.ToLower(s), strings.ToLower(pattern)
		}

		return strings.Contains(s, pattern), nil
	default:
		return false, fmt.Errorf("%w: unsupported operator %q", ErrInvalidDomain, c.Operator)
	}
}

// canonical converts a value into a form that is safe to compare with ==.
func canonical(v any) any {
	switch val := v.(type) {
	case uuid.UUID:
		if val == uuid.Nil {
			return nil
		}

		return val.String()
	case Ref:
		if val.IsZero() {
			return nil
		}

		return val.ID.String()
	case time.Time:
		return val
	case string, bool, nil:
		return val
	}

	if f, ok := toFloat64(v); ok {
		return f
	}

	return fmt.Sprint(v)
}

func equal(a, b any) bool {
	ca, cb := canonical(a), canonical(b)

	ta, aok := ca.(time.Time)
	if aok {
		if s, ok := cb.(string); ok {
			tb, err := ParseTimestamp(s)
			return err == nil && ta.Equal(tb)
		}

		tb, ok := cb.(time.Time)

		return ok && ta.Equal(tb)
	}

	return ca == cb
}

func compare(a, b any) (int, bool) {
	ca, cb := canonical(a), canonical(b)

	switch x := ca.(type) {
	case float64:
		y, ok := cb.(float64)
		if !ok {
			return 0, false
		}

		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	case string:
		y, ok := cb.(string)
		if !ok {
			return 0, false
		}

		return strings.Compare(x, y), true
	case time.Time:
		var y time.Time

		switch val := cb.(type) {
		case time.Time:
			y = val
		case string:
			t, err := ParseTimestamp(val)
			if err != nil {
				return 0, false
			}

			y = t
		default:
			return 0, false
		}

		return x.Compare(y), true
	default:
		return 0, false
	}
}

func toList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}

		return out, true
	case []uuid.UUID:
		out := make([]any, len(val))
		for i, id := range val {
			out[i] = id
		}

		return out, true
	case []int64:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}

		return out, true
	default:
		return nil, false
	}
}
