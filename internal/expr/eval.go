package expr

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Variable names bound when a filter is invoked.
const (
	VarValue  = "value"
	VarArgs   = "args"
	VarValues = "values"
)

// Parse parses src as a single HCL expression. name labels diagnostics.
func Parse(name, src string) (hcl.Expression, error) {
	e, diags := hclsyntax.ParseExpression([]byte(src), name, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, diags
	}
	return e, nil
}

// Scope is the set of variables and functions an expression sees.
type Scope struct {
	Variables map[string]cty.Value
	Tokenize  Tokenizer
}

// Eval evaluates e in scope and converts the result to a rendering value.
func Eval(e hcl.Expression, scope Scope) (interface{}, error) {
	ctx := &hcl.EvalContext{
		Variables: scope.Variables,
		Functions: Functions(scope.Tokenize),
	}

	v, diags := e.Value(ctx)
	if diags.HasErrors() {
		return nil, diags
	}
	out, err := FromCty(v)
	if err != nil {
		return nil, fmt.Errorf("converting result: %w", err)
	}
	return out, nil
}

// ReferencedValueKeys lists the keys of the `values` object that e reads
// through static attribute or index traversals, sorted and unique.
func ReferencedValueKeys(e hcl.Expression) []string {
	seen := make(map[string]struct{})
	for _, t := range e.Variables() {
		if t.RootName() != VarValues || len(t) < 2 {
			continue
		}
		switch step := t[1].(type) {
		case hcl.TraverseAttr:
			seen[step.Name] = struct{}{}
		case hcl.TraverseIndex:
			if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
				seen[step.Key.AsString()] = struct{}{}
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
