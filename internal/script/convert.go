package script

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"

	"record-serializer/internal/record"
)

// toValue converts a Go value into a cty value. Record references become
// their id strings and timestamps their canonical text.
func toValue(v any) cty.Value {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case cty.Value:
		return val
	case bool:
		return cty.BoolVal(val)
	case string:
		return cty.StringVal(val)
	case []byte:
		return cty.StringVal(string(val))
	case int:
		return cty.NumberIntVal(int64(val))
	case int32:
		return cty.NumberIntVal(int64(val))
	case int64:
		return cty.NumberIntVal(val)
	case float32:
		return cty.NumberFloatVal(float64(val))
	case float64:
		return cty.NumberFloatVal(val)
	case time.Time:
		return cty.StringVal(record.FormatTimestamp(val))
	case uuid.UUID:
		if val == uuid.Nil {
			return cty.NullVal(cty.String)
		}

		return cty.StringVal(val.String())
	case record.Ref:
		if val.IsZero() {
			return cty.NullVal(cty.String)
		}

		return cty.StringVal(val.ID.String())
	case []record.Ref:
		items := make([]any, len(val))
		for i, r := range val {
			items[i] = r
		}

		return toValue(items)
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}

		return toValue(items)
	case []any:
		if len(val) == 0 {
			return cty.EmptyTupleVal
		}

		items := make([]cty.Value, len(val))
		for i, item := range val {
			items[i] = toValue(item)
		}

		return cty.TupleVal(items)
	case []map[string]any:
		items := make([]any, len(val))
		for i, m := range val {
			items[i] = m
		}

		return toValue(items)
	case map[string]any:
		if len(val) == 0 {
			return cty.EmptyObjectVal
		}

		attrs := make(map[string]cty.Value, len(val))
		for k, item := range val {
			attrs[k] = toValue(item)
		}

		return cty.ObjectVal(attrs)
	default:
		return cty.StringVal(fmt.Sprint(v))
	}
}

// fromValue converts a cty value back into plain Go values: nil, bool,
// string, int64, float64, []any and map[string]any.
func fromValue(v cty.Value) (any, error) {
	v, _ = v.Unmark()

	if v.IsNull() {
		return nil, nil
	}

	if !v.IsKnown() {
		return nil, fmt.Errorf("%w: value is not known", ErrScript)
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		return fromNumber(v.AsBigFloat()), nil
	case ty.IsListType(), ty.IsTupleType(), ty.IsSetType():
		out := make([]any, 0, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			_, item := it.Element()

			converted, err := fromValue(item)
			if err != nil {
				return nil, err
			}

			out = append(out, converted)
		}

		return out, nil
	case ty.IsMapType(), ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			key, item := it.Element()

			converted, err := fromValue(item)
			if err != nil {
				return nil, err
			}

			out[key.AsString()] = converted
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value type %s", ErrScript, ty.FriendlyName())
	}
}

func fromNumber(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}

	f, _ := bf.Float64()

	return f
}

// variables converts bindings into an evaluation scope.
func variables(bindings map[string]any) map[string]cty.Value {
	vars := make(map[string]cty.Value, len(bindings))
	for name, v := range bindings {
		vars[name] = toValue(v)
	}

	return vars
}
