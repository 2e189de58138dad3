package values

import (
	"fmt"
	"sort"

	"github.com/ptool-dev/ptool/internal/errors"
)

// Kind tags the shape held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is a string, a list of strings or a string-to-string map. No deeper
// nesting is representable. The zero Value is invalid.
type Value struct {
	kind Kind
	str  string
	list []string
	m    map[string]string
}

// String returns a scalar Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// List returns a sequence Value holding a copy of items.
func List(items ...string) Value {
	l := make([]string, len(items))
	copy(l, items)
	return Value{kind: KindList, list: l}
}

// Map returns a mapping Value holding a copy of m.
func Map(m map[string]string) Value {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return Value{kind: KindMap, m: c}
}

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the scalar content. It is empty for non-string values.
func (v Value) Str() string { return v.str }

// Items returns a copy of the list content.
func (v Value) Items() []string {
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

// Entries returns a copy of the map content.
func (v Value) Entries() map[string]string {
	out := make(map[string]string, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}

// SortedKeys returns the map keys in lexical order.
func (v Value) SortedKeys() []string {
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface returns the Go form handed to the template engine: string,
// []string or map[string]string.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindList:
		return v.Items()
	case KindMap:
		return v.Entries()
	default:
		return nil
	}
}

// Equal reports whether two values have the same shape and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, val := range v.m {
			if ov, ok := o.m[k]; !ok || ov != val {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// FromAny converts a decoded YAML or config value into a Value. Scalars
// become strings; sequences and mappings must contain only scalars.
func FromAny(raw interface{}) (Value, error) {
	switch val := raw.(type) {
	case Value:
		return val, nil
	case []interface{}:
		items := make([]string, 0, len(val))
		for i, item := range val {
			s, err := scalar(item)
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, s)
		}
		return Value{kind: KindList, list: items}, nil
	case []string:
		return List(val...), nil
	case map[string]interface{}:
		m := make(map[string]string, len(val))
		for k, item := range val {
			s, err := scalar(item)
			if err != nil {
				return Value{}, fmt.Errorf("entry %q: %w", k, err)
			}
			m[k] = s
		}
		return Value{kind: KindMap, m: m}, nil
	case map[string]string:
		return Map(val), nil
	default:
		s, err := scalar(raw)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	}
}

func scalar(raw interface{}) (string, error) {
	switch val := raw.(type) {
	case string:
		return val, nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(val), nil
	case nil:
		return "", errors.New(errors.ErrUnsupportedValue, "Unsupported value type <nil>")
	default:
		return "", errors.Newf(errors.ErrUnsupportedValue, "Unsupported value type %T", raw)
	}
}
