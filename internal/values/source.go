package values

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// OriginProject labels the built-in project facts.
	OriginProject = "(project)"
	// OriginCommandLine labels key=value pairs given on the command line.
	OriginCommandLine = "(command line)"
)

// Built-in project keys.
const (
	KeyProjectName   = "project_name"
	KeyCopyrightYear = "copyright_year"
)

// Pair is one parsed key=value argument.
type Pair struct {
	Key   string
	Value string
}

// ParsePair splits "key=value" at the first '='. The key must be non-empty;
// the value may be empty or contain further '=' characters.
func ParsePair(s string) (Pair, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return Pair{}, fmt.Errorf("invalid key-value pair %q: expected KEY=VALUE", s)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return Pair{}, fmt.Errorf("invalid key-value pair %q: empty key", s)
	}
	return Pair{Key: key, Value: value}, nil
}

// ParsePairs parses each argument with ParsePair.
func ParsePairs(args []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(args))
	for _, a := range args {
		p, err := ParsePair(a)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// Source is an immutable origin-labelled set of entries.
type Source struct {
	origin  string
	entries map[string]Value
}

// NewSource copies entries into a new Source.
func NewSource(origin string, entries map[string]Value) *Source {
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &Source{origin: origin, entries: m}
}

// FromPairs builds a Source from ordered pairs. A repeated key keeps its
// last value.
func FromPairs(origin string, pairs []Pair) *Source {
	m := make(map[string]Value, len(pairs))
	for _, p := range pairs {
		m[p.Key] = String(p.Value)
	}
	return &Source{origin: origin, entries: m}
}

// FromMap converts a decoded document (YAML, viper settings) into a Source.
// Every top-level entry becomes a value.
func FromMap(origin string, raw map[string]interface{}) (*Source, error) {
	m := make(map[string]Value, len(raw))
	for k, item := range raw {
		v, err := FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("value %q in %s: %w", k, origin, err)
		}
		m[k] = v
	}
	return &Source{origin: origin, entries: m}, nil
}

// Project returns the built-in facts about the project being generated.
func Project(name string, now time.Time) *Source {
	return &Source{
		origin: OriginProject,
		entries: map[string]Value{
			KeyCopyrightYear: String(strconv.Itoa(now.Year())),
			KeyProjectName:   String(name),
		},
	}
}

// CommandLine wraps parsed command-line pairs.
func CommandLine(pairs []Pair) *Source {
	return FromPairs(OriginCommandLine, pairs)
}

// Origin is the human-readable provenance label.
func (s *Source) Origin() string { return s.origin }

// String implements fmt.Stringer.
func (s *Source) String() string { return s.origin }

// Len returns the number of entries.
func (s *Source) Len() int { return len(s.entries) }

// Get returns the value for key.
func (s *Source) Get(key string) (Value, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Keys returns the entry keys in lexical order.
func (s *Source) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a mapping view where each value carries a reference back
// to this source.
func (s *Source) Entries() map[string]Entry {
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = Entry{Value: v, Source: s}
	}
	return out
}
