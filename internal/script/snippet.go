package script

import (
	"fmt"
	"maps"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// ResultVar is the variable holding the value being post-processed.
const ResultVar = "result"

// Snippet is a compiled post-processing snippet.
type Snippet struct {
	name   string
	source string
	attrs  []*hclsyntax.Attribute
	now    Clock
}

// SnippetOption configures a Snippet.
type SnippetOption func(*Snippet)

// WithClock sets the clock behind the now function.
func WithClock(clock Clock) SnippetOption {
	return func(s *Snippet) {
		s.now = clock
	}
}

// CompileSnippet parses a snippet body. Blocks are not allowed.
func CompileSnippet(name, source string, opts ...SnippetOption) (*Snippet, error) {
	file, diags := hclsyntax.ParseConfig([]byte(source), name, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, wrapDiags("parse "+name, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unexpected body type %T", ErrScript, name, file.Body)
	}

	if len(body.Blocks) > 0 {
		return nil, fmt.Errorf("%w: %s: blocks are not allowed, found %q", ErrScript, name, body.Blocks[0].Type)
	}

	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}

	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	s := &Snippet{name: name, source: source, attrs: attrs}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Name returns the snippet name used in error messages.
func (s *Snippet) Name() string {
	return s.name
}

// Source returns the snippet source text.
func (s *Snippet) Source() string {
	return s.source
}

// Keys returns the result keys the snippet assigns, in evaluation order.
func (s *Snippet) Keys() []string {
	keys := make([]string, len(s.attrs))
	for i, attr := range s.attrs {
		keys[i] = attr.Name
	}

	return keys
}

// Run evaluates the snippet against bindings and returns the updated
// result. The input result map is not modified. An attribute evaluating to
// null removes its key.
func (s *Snippet) Run(bindings map[string]any, result map[string]any) (map[string]any, error) {
	out := maps.Clone(result)
	if out == nil {
		out = make(map[string]any)
	}

	scope := maps.Clone(bindings)
	if scope == nil {
		scope = make(map[string]any, 1)
	}

	for _, attr := range s.attrs {
		scope[ResultVar] = out

		v, diags := attr.Expr.Value(evalContext(attr.Expr, scope, s.now, false))
		if diags.HasErrors() {
			return nil, wrapDiags(fmt.Sprintf("%s: %s", s.name, attr.Name), diags)
		}

		converted, err := fromValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", s.name, attr.Name, err)
		}

		if converted == nil {
			delete(out, attr.Name)
			continue
		}

		out[attr.Name] = converted
	}

	return out, nil
}
