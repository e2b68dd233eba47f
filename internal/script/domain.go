package script

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"record-serializer/internal/record"
)

// DefaultDomain matches records by their id.
const DefaultDomain = `[["id", "=", id]]`

// DomainExpr is a compiled match domain.
type DomainExpr struct {
	source string
	expr   hclsyntax.Expression
}

// CompileDomain parses a match domain. An empty source yields DefaultDomain.
// The domain is evaluated once with every variable null to reject sources
// that cannot produce a domain at all.
func CompileDomain(source string) (*DomainExpr, error) {
	if source == "" {
		source = DefaultDomain
	}

	expr, diags := hclsyntax.ParseExpression([]byte(source), "import_domain", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, wrapDiags("parse domain", diags)
	}

	d := &DomainExpr{source: source, expr: expr}

	if _, err := d.Evaluate(nil); err != nil {
		return nil, err
	}

	return d, nil
}

// Source returns the domain source text.
func (d *DomainExpr) Source() string {
	return d.source
}

// Evaluate computes the domain for one deserialized payload. Variables
// the payload does not provide are null.
func (d *DomainExpr) Evaluate(values map[string]any) (record.Domain, error) {
	v, diags := d.expr.Value(evalContext(d.expr, values, nil, true))
	if diags.HasErrors() {
		return nil, wrapDiags("evaluate domain", diags)
	}

	raw, err := fromValue(v)
	if err != nil {
		return nil, err
	}

	items, ok := raw.([]any)
	if !ok && raw != nil {
		return nil, fmt.Errorf("%w: domain must be a list of conditions, got %T", ErrScript, raw)
	}

	domain := make(record.Domain, 0, len(items))

	for i, item := range items {
		cond, err := condition(item)
		if err != nil {
			return nil, fmt.Errorf("%w: condition %d: %w", ErrScript, i, err)
		}

		domain = append(domain, cond)
	}

	if err := domain.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}

	return domain, nil
}

func condition(item any) (record.Condition, error) {
	triple, ok := item.([]any)
	if !ok || len(triple) != 3 {
		return record.Condition{}, fmt.Errorf("%w: expected [field, operator, value]", record.ErrInvalidDomain)
	}

	field, fok := triple[0].(string)
	op, ook := triple[1].(string)

	if !fok || !ook {
		return record.Condition{}, fmt.Errorf("%w: field and operator must be strings", record.ErrInvalidDomain)
	}

	return record.Condition{Field: field, Operator: op, Value: triple[2]}, nil
}
