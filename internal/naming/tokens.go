package naming

import (
	"strings"
	"sync"
)

// Tokens is the tokenized form of a raw name. The derived identifiers are
// computed on first use and cached.
type Tokens struct {
	raw       string
	fragments []string

	once       sync.Once
	namespace  string
	moduleName string
}

// Tokenize splits raw on '-' and '_' separators and sanitizes each fragment.
// Empty fragments are dropped, so an all-separator input yields no fragments.
func Tokenize(raw string) *Tokens {
	normalized := strings.ReplaceAll(raw, "-", "_")

	var fragments []string
	for _, part := range strings.Split(normalized, "_") {
		if part == "" {
			continue
		}
		fragments = append(fragments, sanitize(part))
	}

	return &Tokens{raw: raw, fragments: fragments}
}

// Raw returns the input the tokens were derived from.
func (t *Tokens) Raw() string { return t.raw }

// Fragments returns a copy of the sanitized fragments.
func (t *Tokens) Fragments() []string {
	out := make([]string, len(t.fragments))
	copy(out, t.fragments)
	return out
}

// Namespace returns the fragments joined with underscores, e.g.
// "my-cool_project" -> "my_cool_project".
func (t *Tokens) Namespace() string {
	t.derive()
	return t.namespace
}

// ModuleName returns the title-cased fragments concatenated with no
// separator, e.g. "my-cool_project" -> "MyCoolProject".
func (t *Tokens) ModuleName() string {
	t.derive()
	return t.moduleName
}

func (t *Tokens) derive() {
	t.once.Do(func() {
		t.namespace = strings.Join(t.fragments, "_")

		var b strings.Builder
		for _, f := range t.fragments {
			b.WriteString(titleFragment(f))
		}
		t.moduleName = b.String()
	})
}

// sanitize forces the first character to be an ASCII letter and the rest to
// be ASCII letters, digits or underscores. Offending characters become '_'.
func sanitize(fragment string) string {
	b := []byte(fragment)
	for i, c := range b {
		switch {
		case i == 0 && !isAlpha(c):
			b[i] = '_'
		case i > 0 && !isAlpha(c) && !isDigit(c):
			b[i] = '_'
		}
	}
	return string(b)
}

// titleFragment upper-cases every letter that follows a non-letter and
// lower-cases the others, so "_d" -> "_D" and "abC" -> "Abc".
func titleFragment(fragment string) string {
	b := []byte(fragment)
	prevLetter := false
	for i, c := range b {
		if !isAlpha(c) {
			prevLetter = false
			continue
		}
		if prevLetter {
			b[i] = toLower(c)
		} else {
			b[i] = toUpper(c)
		}
		prevLetter = true
	}
	return string(b)
}

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func toUpper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
