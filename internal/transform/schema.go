package transform

import (
	"time"

	"record-serializer/internal/metrics"
	"record-serializer/internal/schema"
)

const contentType = "application/json"

// JSONSchema registers the components of the endpoint's mapping in reg and
// returns the root schema. It returns nil when the code is unknown.
func (f *Facade) JSONSchema(reg schema.Registry, ep Endpoint, dir schema.Direction) *schema.Schema {
	start := time.Now()

	m, err := f.Mapping(ep.Code)
	if err != nil {
		f.logger.Warn().Str("code", ep.Code).Msg("no mapping for schema")
		f.observe(ep.Code, metrics.OpSchema, start, 0, err)

		return nil
	}

	root := f.builder.BuildComponent(reg, m, dir, ep.IsList)
	f.observe(ep.Code, metrics.OpSchema, start, 0, nil)

	return root
}

// RequestBodySchema describes request bodies: the importing direction.
func (f *Facade) RequestBodySchema(reg schema.Registry, ep Endpoint) *schema.Schema {
	return f.JSONSchema(reg, ep, schema.Importing)
}

// ResponseSchema describes responses: the exporting direction.
func (f *Facade) ResponseSchema(reg schema.Registry, ep Endpoint) *schema.Schema {
	return f.JSONSchema(reg, ep, schema.Exporting)
}

// RequestBody returns the OpenAPI request body object of the endpoint.
func (f *Facade) RequestBody(reg schema.Registry, ep Endpoint) map[string]any {
	return content(f.RequestBodySchema(reg, ep))
}

// Responses returns the OpenAPI responses object of the endpoint.
func (f *Facade) Responses(reg schema.Registry, ep Endpoint) map[string]any {
	return map[string]any{"200": content(f.ResponseSchema(reg, ep))}
}

func content(s *schema.Schema) map[string]any {
	body := map[string]any{}
	if s != nil {
		body = s.Map()
	}

	return map[string]any{
		"content": map[string]any{
			contentType: map[string]any{"schema": body},
		},
	}
}
