package script

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ErrScript is wrapped by every parse and evaluation error.
var ErrScript = errors.New("script error")

// Clock returns the current time for the now function.
type Clock func() time.Time

// wrapDiags turns diagnostics into an error wrapping ErrScript, and
// ErrFailed when the fail function raised them.
func wrapDiags(what string, diags hcl.Diagnostics) error {
	for _, diag := range diags {
		extra, ok := hcl.DiagnosticExtra[hclsyntax.FunctionCallDiagExtra](diag)
		if ok && errors.Is(extra.FunctionCallError(), ErrFailed) {
			return fmt.Errorf("%w: %s: %w", ErrScript, what, extra.FunctionCallError())
		}
	}

	return fmt.Errorf("%w: %s: %w", ErrScript, what, diags)
}

// evalContext builds the scope of one evaluation. Variables referenced by
// expr but absent from bindings evaluate to null when lenient is set.
func evalContext(expr hclsyntax.Expression, bindings map[string]any, now Clock, lenient bool) *hcl.EvalContext {
	vars := variables(bindings)

	if lenient {
		for _, traversal := range expr.Variables() {
			name := traversal.RootName()
			if _, ok := vars[name]; !ok {
				vars[name] = cty.NullVal(cty.DynamicPseudoType)
			}
		}
	}

	if now == nil {
		now = time.Now
	}

	return &hcl.EvalContext{
		Variables: vars,
		Functions: functions(now),
	}
}
