package values

import "sort"

// Entry is a value paired with the source that supplied it.
type Entry struct {
	Value  Value
	Source *Source
}

// Resolved is the effective mapping produced by Merge.
type Resolved struct {
	entries map[string]Entry
}

// Merge layers sources in order. For every key, the entry from the last
// source defining it wins, and that source becomes the key's provenance.
// Nil sources are skipped.
func Merge(sources ...*Source) *Resolved {
	r := &Resolved{entries: make(map[string]Entry)}
	for _, s := range sources {
		if s == nil {
			continue
		}
		for k, v := range s.entries {
			r.entries[k] = Entry{Value: v, Source: s}
		}
	}
	return r
}

// With returns a new mapping with sources layered over r. r is unchanged.
func (r *Resolved) With(sources ...*Source) *Resolved {
	out := &Resolved{entries: make(map[string]Entry, len(r.entries))}
	for k, e := range r.entries {
		out.entries[k] = e
	}
	for _, s := range sources {
		if s == nil {
			continue
		}
		for k, v := range s.entries {
			out.entries[k] = Entry{Value: v, Source: s}
		}
	}
	return out
}

// Lookup returns the entry for key.
func (r *Resolved) Lookup(key string) (Entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Has reports whether key resolved to any value.
func (r *Resolved) Has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// Len returns the number of resolved keys.
func (r *Resolved) Len() int { return len(r.entries) }

// Keys returns all resolved keys in lexical order.
func (r *Resolved) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Missing returns the keys not present in r, preserving the order given.
func (r *Resolved) Missing(keys []string) []string {
	var missing []string
	for _, k := range keys {
		if !r.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Data returns the values without provenance, in the form consumed by the
// rendering engine.
func (r *Resolved) Data() map[string]interface{} {
	out := make(map[string]interface{}, len(r.entries))
	for k, e := range r.entries {
		out[k] = e.Value.Interface()
	}
	return out
}
