package extension

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/expr"
	"github.com/ptool-dev/ptool/internal/logging"
	"github.com/ptool-dev/ptool/internal/naming"
	"github.com/zclconf/go-cty/cty"
)

const (
	// FileName is the extension file looked up in a template directory.
	FileName = "_ptool.hcl"
	// EntryPoint is the block that registers capabilities.
	EntryPoint = "register"
)

// Registrar is the narrow contract an extension is given. Rendering
// contexts implement it.
type Registrar interface {
	RegisterFilter(name string, fn interface{}) error
	Tokenize(raw string) *naming.Tokens
	Value(key string) (interface{}, error)
	Keys() []string
}

// Extension describes a loaded extension file.
type Extension struct {
	Path          string
	HasEntryPoint bool
	Filters       []string
	// ValueKeys lists the `values` keys referenced by registered filters.
	ValueKeys []string
}

type fileSchema struct {
	Register *registerBlock `hcl:"register,block"`
}

type registerBlock struct {
	Filters []filterBlock `hcl:"filter,block"`
}

type filterBlock struct {
	Name   string         `hcl:"name,label"`
	Params []string       `hcl:"params,optional"`
	Result hcl.Expression `hcl:"result"`
}

// Load reads FileName from templateDir and registers its filters with r.
// A missing file returns nil with no error. A file without a register block
// is returned with HasEntryPoint false; callers decide how to report it.
func Load(templateDir string, r Registrar) (*Extension, error) {
	logger := logging.GetLogger("extension")
	path := filepath.Join(templateDir, FileName)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("No template extension")
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "reading extension %s", path)
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, errors.ErrExtensionInvalid, "parsing extension %s", path)
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(f.Body, nil, &schema); diags.HasErrors() {
		return nil, errors.Wrapf(diags, errors.ErrExtensionInvalid, "decoding extension %s", path)
	}

	ext := &Extension{Path: path}
	if schema.Register == nil {
		return ext, nil
	}
	ext.HasEntryPoint = true

	keys := make(map[string]struct{})
	for _, fb := range schema.Register.Filters {
		if err := validateParams(fb); err != nil {
			return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "extension %s", path)
		}
		if err := r.RegisterFilter(fb.Name, filterFunc(fb, r)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "registering filter %q from %s", fb.Name, path)
		}
		ext.Filters = append(ext.Filters, fb.Name)
		for _, k := range expr.ReferencedValueKeys(fb.Result) {
			keys[k] = struct{}{}
		}
		logger.Debug().Str("filter", fb.Name).Strs("params", fb.Params).Msg("Registered extension filter")
	}

	for k := range keys {
		ext.ValueKeys = append(ext.ValueKeys, k)
	}
	sort.Strings(ext.ValueKeys)
	return ext, nil
}

func validateParams(fb filterBlock) error {
	if !hclsyntax.ValidIdentifier(fb.Name) {
		return fmt.Errorf("filter name %q is not a valid identifier", fb.Name)
	}
	seen := make(map[string]bool, len(fb.Params))
	for _, p := range fb.Params {
		if !hclsyntax.ValidIdentifier(p) {
			return fmt.Errorf("filter %q: parameter %q is not a valid identifier", fb.Name, p)
		}
		if p == expr.VarValues {
			return fmt.Errorf("filter %q: parameter name %q is reserved", fb.Name, p)
		}
		if seen[p] {
			return fmt.Errorf("filter %q: duplicate parameter %q", fb.Name, p)
		}
		seen[p] = true
	}
	return nil
}

// filterFunc binds template arguments positionally to the declared params.
// In a pipeline the piped value is the last argument.
func filterFunc(fb filterBlock, r Registrar) func(args ...interface{}) (interface{}, error) {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != len(fb.Params) {
			return nil, errors.Newf(errors.ErrFilterInvalid,
				"filter %q expects %d argument(s), got %d", fb.Name, len(fb.Params), len(args))
		}

		vars := make(map[string]cty.Value, len(fb.Params)+1)
		for i, p := range fb.Params {
			v, err := expr.ToCty(args[i])
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFilterInvalid, "filter %q parameter %q", fb.Name, p)
			}
			vars[p] = v
		}

		obj, err := valuesObject(r)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilterInvalid, "filter %q", fb.Name)
		}
		vars[expr.VarValues] = obj

		out, err := expr.Eval(fb.Result, expr.Scope{Variables: vars, Tokenize: r.Tokenize})
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilterInvalid, "evaluating filter %q", fb.Name)
		}
		return out, nil
	}
}

func valuesObject(r Registrar) (cty.Value, error) {
	data := make(map[string]interface{})
	for _, k := range r.Keys() {
		v, err := r.Value(k)
		if err != nil {
			return cty.NilVal, err
		}
		data[k] = v
	}
	return expr.ObjectOf(data)
}
