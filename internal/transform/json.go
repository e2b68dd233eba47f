package transform

import (
	"fmt"
	"time"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"record-serializer/internal/engine"
	"record-serializer/internal/record"
)

// Parse decodes JSON content. A non-empty path is a JSONPath selecting the
// payload inside the document; several matches become a list.
func Parse(content []byte, path string) (any, error) {
	doc, err := oj.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrInvalidPayloadShape, err)
	}

	if path == "" {
		return doc, nil
	}

	return Select(doc, path)
}

// Select evaluates a JSONPath against a parsed document.
func Select(doc any, path string) (any, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", path, err)
	}

	results := x.Get(doc)

	switch len(results) {
	case 0:
		return nil, fmt.Errorf("%w: %s selects nothing", engine.ErrInvalidPayloadShape, path)
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// Encode renders v as JSON. Indented output uses two spaces and sorted
// keys.
func Encode(v any, indent bool) ([]byte, error) {
	opts := &ojg.Options{Sort: true}
	if indent {
		opts.Indent = 2
	}

	return oj.Marshal(jsonable(v), opts)
}

// jsonable replaces values JSON has no form for: timestamps become their
// canonical text, references their id.
func jsonable(v any) any {
	switch val := v.(type) {
	case time.Time:
		return record.FormatTimestamp(val)
	case record.Ref:
		if val.IsZero() {
			return nil
		}

		return val.ID.String()
	case map[string]any:
		if val == nil {
			return nil
		}

		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonable(item)
		}

		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonable(item)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonable(item)
		}

		return out
	default:
		return v
	}
}
