package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/zclconf/go-cty/cty"
)

// Filter is a named expression body from a template manifest. The body is
// parsed on first call, so a malformed filter only fails when it is used.
type Filter struct {
	Name string
	Body string

	parsed   hcl.Expression
	parseErr error
	done     bool
}

// NewFilter returns an unparsed filter.
func NewFilter(name, body string) *Filter {
	return &Filter{Name: name, Body: body}
}

// Expression parses the body if needed and returns it.
func (f *Filter) Expression() (hcl.Expression, error) {
	if !f.done {
		f.parsed, f.parseErr = Parse("filter "+f.Name, f.Body)
		f.done = true
	}
	if f.parseErr != nil {
		return nil, errors.Wrapf(f.parseErr, errors.ErrFilterInvalid, "filter %q", f.Name)
	}
	return f.parsed, nil
}

// Call evaluates the filter. The last argument is bound to `value` and the
// preceding ones to the `args` tuple, matching a template pipeline where the
// piped value arrives last. values is bound to `values`.
func (f *Filter) Call(values cty.Value, tokenize Tokenizer, args ...interface{}) (interface{}, error) {
	e, err := f.Expression()
	if err != nil {
		return nil, err
	}

	vars := map[string]cty.Value{
		VarValues: values,
		VarValue:  cty.NullVal(cty.DynamicPseudoType),
		VarArgs:   cty.EmptyTupleVal,
	}

	if len(args) > 0 {
		last, err := ToCty(args[len(args)-1])
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilterInvalid, "filter %q argument", f.Name)
		}
		vars[VarValue] = last

		leading := make([]cty.Value, 0, len(args)-1)
		for i, a := range args[:len(args)-1] {
			cv, err := ToCty(a)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFilterInvalid, "filter %q argument %d", f.Name, i)
			}
			leading = append(leading, cv)
		}
		vars[VarArgs] = cty.TupleVal(leading)
	}

	out, err := Eval(e, Scope{Variables: vars, Tokenize: tokenize})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilterInvalid, "evaluating filter %q", f.Name)
	}
	return out, nil
}

// ValueKeys reports the `values` keys the filter body references. A body
// that does not parse references nothing.
func (f *Filter) ValueKeys() []string {
	e, err := f.Expression()
	if err != nil {
		return nil
	}
	return ReferencedValueKeys(e)
}

// String implements fmt.Stringer.
func (f *Filter) String() string {
	return fmt.Sprintf("filter %s = %s", f.Name, f.Body)
}
