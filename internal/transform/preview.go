package transform

import (
	"context"
	"time"

	"record-serializer/internal/metrics"
	"record-serializer/internal/record"
)

// Preview shows what a mapping makes of one record.
type Preview struct {
	Serialized   string
	Deserialized string
	Matching     int
	Message      string
}

// Preview serializes a record, deserializes the output again and counts
// the records its import domain matches. Failures after serializing are
// reported in Message.
func (f *Facade) Preview(ctx context.Context, code string, ref record.Ref) (out *Preview, err error) {
	start := time.Now()

	defer func() { f.observe(code, metrics.OpPreview, start, 0, err) }()

	m, err := f.Mapping(code)
	if err != nil {
		return nil, err
	}

	values, err := f.engine.Serialize(ctx, m, ref)
	if err != nil {
		return nil, err
	}

	serialized, err := Encode(values, true)
	if err != nil {
		return nil, err
	}

	out = &Preview{Serialized: string(serialized)}

	payload, err := Parse(serialized, "")
	if err != nil {
		out.Message = err.Error()
		return out, nil
	}

	deserialized, err := f.engine.Deserialize(ctx, m, payload)
	if err != nil {
		out.Message = err.Error()
		return out, nil
	}

	text, err := Encode(deserialized, true)
	if err != nil {
		out.Message = err.Error()
		return out, nil
	}

	out.Deserialized = string(text)

	matching, err := f.engine.CountMatching(ctx, m, deserialized)
	if err != nil {
		out.Message = err.Error()
		return out, nil
	}

	out.Matching = matching

	return out, nil
}
