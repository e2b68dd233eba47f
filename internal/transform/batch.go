package transform

import (
	"context"
	"time"

	"record-serializer/internal/metrics"
	"record-serializer/internal/record"
)

// Export serializes records into a JSON list.
func (f *Facade) Export(ctx context.Context, code string, refs []record.Ref) (out []byte, err error) {
	start := time.Now()

	defer func() { f.observe(code, metrics.OpExport, start, len(refs), err) }()

	m, err := f.exporting(code)
	if err != nil {
		return nil, err
	}

	list, err := f.engine.SerializeAll(ctx, m, refs)
	if err != nil {
		return nil, err
	}

	return Encode(list, false)
}

// Deserialize parses a JSON list of objects and deserializes each one.
func (f *Facade) Deserialize(ctx context.Context, code string, content []byte) (out []map[string]any, err error) {
	start := time.Now()

	defer func() { f.observe(code, metrics.OpDeserialize, start, len(out), err) }()

	m, err := f.importing(code)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(content, "")
	if err != nil {
		return nil, err
	}

	items, err := objectList(doc)
	if err != nil {
		return nil, err
	}

	return f.engine.DeserializeList(ctx, m, items)
}

// Import parses JSON content holding one object or a list of objects and
// imports it. Unmatched objects are created when create is set.
func (f *Facade) Import(ctx context.Context, code string, content []byte, create bool) ([]record.Ref, error) {
	return f.ImportAt(ctx, code, content, "", create)
}

// ImportAt is Import on the part of the document a JSONPath selects.
func (f *Facade) ImportAt(ctx context.Context, code string, content []byte, path string, create bool) (out []record.Ref, err error) {
	start := time.Now()

	defer func() { f.observe(code, metrics.OpImport, start, len(out), err) }()

	m, err := f.importing(code)
	if err != nil {
		return nil, err
	}

	payload, err := Parse(content, path)
	if err != nil {
		return nil, err
	}

	refs, err := f.engine.Import(ctx, m, payload, create)
	if err != nil {
		return nil, err
	}

	f.logger.Info().Str("code", code).Int("records", len(refs)).Msg("imported")

	return refs, nil
}
