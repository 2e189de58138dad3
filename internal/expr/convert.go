package expr

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToCty converts a rendering value into its cty form. Supported inputs are
// strings, string slices and maps, generic maps and slices of those, and
// the Go scalar types.
func ToCty(v interface{}) (cty.Value, error) {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return val, nil
	case string:
		return cty.StringVal(val), nil
	case []string:
		return gocty.ToCtyValue(val, cty.List(cty.String))
	case map[string]string:
		return gocty.ToCtyValue(val, cty.Map(cty.String))
	case []interface{}:
		items := make([]cty.Value, 0, len(val))
		for i, item := range val {
			cv, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			items = append(items, cv)
		}
		return cty.TupleVal(items), nil
	case map[string]interface{}:
		attrs := make(map[string]cty.Value, len(val))
		for k, item := range val {
			cv, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("attribute %q: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	default:
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("unable to infer cty.Type for %T: %w", v, err)
		}
		return gocty.ToCtyValue(v, ty)
	}
}

// FromCty converts an expression result back into a rendering value: a
// string, a []string or a map[string]string. Numbers and bools become their
// canonical string form.
func FromCty(v cty.Value) (interface{}, error) {
	if !v.IsKnown() {
		return nil, fmt.Errorf("result is unknown")
	}
	if v.IsNull() {
		return nil, fmt.Errorf("result is null")
	}

	ty := v.Type()
	switch {
	case ty.IsPrimitiveType():
		return primitiveString(v)

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]string, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			s, err := primitiveString(elem)
			if err != nil {
				return nil, fmt.Errorf("list element: %w", err)
			}
			out = append(out, s)
		}
		return out, nil

	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]string, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			k, elem := it.Element()
			s, err := primitiveString(elem)
			if err != nil {
				return nil, fmt.Errorf("map element %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = s
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported result type %s", ty.FriendlyName())
	}
}

func primitiveString(v cty.Value) (string, error) {
	if v.IsNull() || !v.IsKnown() {
		return "", fmt.Errorf("value is null or unknown")
	}
	if !v.Type().IsPrimitiveType() {
		return "", fmt.Errorf("nested %s values are not supported", v.Type().FriendlyName())
	}
	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	return sv.AsString(), nil
}

// ObjectOf builds the `values` object from resolved rendering data.
func ObjectOf(data map[string]interface{}) (cty.Value, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make(map[string]cty.Value, len(data))
	for _, k := range keys {
		cv, err := ToCty(data[k])
		if err != nil {
			return cty.NilVal, fmt.Errorf("value %q: %w", k, err)
		}
		attrs[k] = cv
	}
	return cty.ObjectVal(attrs), nil
}
