package transform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"record-serializer/internal/common"
	"record-serializer/internal/engine"
	"record-serializer/internal/mapping"
	"record-serializer/internal/metrics"
	"record-serializer/internal/record"
	"record-serializer/internal/schema"
)

var (
	// ErrUnknownMapping is returned when no mapping has the requested code.
	ErrUnknownMapping = errors.New("unknown mapping")
	// ErrUnexpectedResult is returned when a response is not built from
	// records of the mapping's record type.
	ErrUnexpectedResult = errors.New("unexpected result")
	// ErrDirectionDisabled is returned when a mapping does not import or
	// export as requested.
	ErrDirectionDisabled = errors.New("direction disabled")
)

// Endpoint describes one API parameter or response bound to a mapping.
type Endpoint struct {
	Code   string
	IsList bool
}

// Facade runs transforms by mapping code.
type Facade struct {
	set     *mapping.Set
	engine  *engine.Engine
	builder *schema.Builder
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Facade) {
		f.logger = logger
	}
}

// WithMetrics records every operation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Facade) {
		f.metrics = m
	}
}

// WithBuilder sets the schema builder.
func WithBuilder(b *schema.Builder) Option {
	return func(f *Facade) {
		f.builder = b
	}
}

// New creates a facade over a linked mapping set.
func New(set *mapping.Set, eng *engine.Engine, opts ...Option) *Facade {
	f := &Facade{
		set:    set,
		engine: eng,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.builder == nil {
		f.builder = schema.NewBuilder(schema.WithLogger(f.logger))
	}

	return f
}

// Mapping returns the mapping with the given code.
func (f *Facade) Mapping(code string) (*mapping.Mapping, error) {
	m, ok := f.set.FindByCode(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMapping, code)
	}

	return m, nil
}

func (f *Facade) importing(code string) (*mapping.Mapping, error) {
	m, err := f.Mapping(code)
	if err != nil {
		return nil, err
	}

	if !m.Importing {
		return nil, fmt.Errorf("%w: %s does not import", ErrDirectionDisabled, m.Name)
	}

	return m, nil
}

func (f *Facade) exporting(code string) (*mapping.Mapping, error) {
	m, err := f.Mapping(code)
	if err != nil {
		return nil, err
	}

	if !m.Exporting {
		return nil, fmt.Errorf("%w: %s does not export", ErrDirectionDisabled, m.Name)
	}

	return m, nil
}

func (f *Facade) observe(code, op string, start time.Time, records int, err error) {
	f.metrics.Observe(code, op, records, err, time.Since(start))

	if errors.Is(err, engine.ErrInvalidPayloadShape) {
		f.logger.Warn().Str("code", code).Str("operation", op).Err(err).Msg("rejected payload")
	}
}

// FromParams deserializes request parameters. In list mode params must be
// a list of objects and the result is []map[string]any; otherwise params
// must be an object and the result is map[string]any.
func (f *Facade) FromParams(ctx context.Context, ep Endpoint, params any) (out any, err error) {
	start := time.Now()
	count := 0

	defer func() { f.observe(ep.Code, metrics.OpParams, start, count, err) }()

	m, err := f.importing(ep.Code)
	if err != nil {
		return nil, err
	}

	if !ep.IsList {
		values, err := f.engine.Deserialize(ctx, m, params)
		if err != nil {
			return nil, err
		}

		count = 1

		return values, nil
	}

	items, err := objectList(params)
	if err != nil {
		return nil, err
	}

	list, err := f.engine.DeserializeList(ctx, m, items)
	if err != nil {
		return nil, err
	}

	count = len(list)

	return list, nil
}

// DecodeBody parses a JSON request body and deserializes it like
// FromParams.
func (f *Facade) DecodeBody(ctx context.Context, ep Endpoint, body []byte) (any, error) {
	params, err := Parse(body, "")
	if err != nil {
		return nil, err
	}

	return f.FromParams(ctx, ep, params)
}

// ToResponse serializes a handler result: nil, a record.Ref or a
// []record.Ref of the mapping's record type. A nil result is a nil
// response. Outside list mode exactly one record is expected.
func (f *Facade) ToResponse(ctx context.Context, ep Endpoint, result any) (out any, err error) {
	if result == nil {
		return nil, nil
	}

	start := time.Now()
	count := 0

	defer func() { f.observe(ep.Code, metrics.OpResponse, start, count, err) }()

	var refs []record.Ref

	switch r := result.(type) {
	case record.Ref:
		refs = []record.Ref{r}
	case []record.Ref:
		refs = r
	default:
		f.logger.Error().Str("code", ep.Code).Str("type", fmt.Sprintf("%T", result)).Msg("result is not a record set")

		return nil, fmt.Errorf("%w: %T is not a record set", ErrUnexpectedResult, result)
	}

	m, err := f.exporting(ep.Code)
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		if ref.Model != m.Model.Name {
			return nil, fmt.Errorf("%w: %s record for mapping of %s", ErrUnexpectedResult, ref.Model, m.Model.Name)
		}
	}

	if ep.IsList {
		list, err := f.engine.SerializeAll(ctx, m, refs)
		if err != nil {
			return nil, err
		}

		count = len(list)

		return list, nil
	}

	if !common.IsSingle(refs) {
		return nil, fmt.Errorf("%w: expected one record, got %d", engine.ErrInvalidPayloadShape, len(refs))
	}

	values, err := f.engine.Serialize(ctx, m, refs[0])
	if err != nil {
		return nil, err
	}

	count = 1

	if values == nil {
		return nil, nil
	}

	return values, nil
}

func objectList(v any) ([]any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of objects", engine.ErrInvalidPayloadShape)
	}

	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return nil, fmt.Errorf("%w: expected a list of objects", engine.ErrInvalidPayloadShape)
		}
	}

	return items, nil
}
