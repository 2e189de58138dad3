package expr

import (
	"github.com/iancoleman/strcase"
	"github.com/ptool-dev/ptool/internal/naming"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Tokenizer returns the tokens for a raw name. Rendering contexts pass their
// cached tokenizer so expression and template calls share one cache.
type Tokenizer func(raw string) *naming.Tokens

// Functions returns the function table available to filter expressions.
// A nil tokenizer falls back to naming.Tokenize.
func Functions(tokenize Tokenizer) map[string]function.Function {
	if tokenize == nil {
		tokenize = naming.Tokenize
	}

	return map[string]function.Function{
		// strings
		"upper":         stdlib.UpperFunc,
		"lower":         stdlib.LowerFunc,
		"title":         stdlib.TitleFunc,
		"trimspace":     stdlib.TrimSpaceFunc,
		"trim":          stdlib.TrimFunc,
		"trimprefix":    stdlib.TrimPrefixFunc,
		"trimsuffix":    stdlib.TrimSuffixFunc,
		"replace":       stdlib.ReplaceFunc,
		"regex_replace": stdlib.RegexReplaceFunc,
		"regex":         stdlib.RegexFunc,
		"split":         stdlib.SplitFunc,
		"join":          stdlib.JoinFunc,
		"format":        stdlib.FormatFunc,
		"substr":        stdlib.SubstrFunc,
		"strlen":        stdlib.StrlenFunc,
		"strrev":        stdlib.ReverseFunc,
		"indent":        stdlib.IndentFunc,
		"chomp":         stdlib.ChompFunc,

		// collections
		"length":   stdlib.LengthFunc,
		"concat":   stdlib.ConcatFunc,
		"contains": stdlib.ContainsFunc,
		"element":  stdlib.ElementFunc,
		"lookup":   stdlib.LookupFunc,
		"keys":     stdlib.KeysFunc,
		"coalesce": stdlib.CoalesceFunc,
		"reverse":  stdlib.ReverseListFunc,
		"sort":     stdlib.SortFunc,

		// identifiers
		"namespace":       stringFunc(func(s string) string { return tokenize(s).Namespace() }),
		"module_name":     stringFunc(func(s string) string { return tokenize(s).ModuleName() }),
		"fragments":       fragmentsFunc(tokenize),
		"snake":           stringFunc(strcase.ToSnake),
		"camel":           stringFunc(strcase.ToCamel),
		"lower_camel":     stringFunc(strcase.ToLowerCamel),
		"kebab":           stringFunc(strcase.ToKebab),
		"screaming_snake": stringFunc(strcase.ToScreamingSnake),
	}
}

func stringFunc(fn func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "str", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(fn(args[0].AsString())), nil
		},
	})
}

func fragmentsFunc(tokenize Tokenizer) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.List(cty.String)),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			fragments := tokenize(args[0].AsString()).Fragments()
			if len(fragments) == 0 {
				return cty.ListValEmpty(cty.String), nil
			}
			vals := make([]cty.Value, len(fragments))
			for i, f := range fragments {
				vals[i] = cty.StringVal(f)
			}
			return cty.ListVal(vals), nil
		},
	})
}
