package values

import (
	"fmt"
	"io"
	"strings"

	"github.com/ptool-dev/ptool/internal/errors"
)

// Print writes every resolved key in lexical order with its value and the
// origin it came from. Multi-line strings, lists and maps are printed as an
// indented block under the key.
func Print(w io.Writer, r *Resolved) error {
	for _, key := range r.Keys() {
		e := r.entries[key]
		if err := printEntry(w, key, e); err != nil {
			return err
		}
	}
	return nil
}

func printEntry(w io.Writer, key string, e Entry) error {
	v := e.Value
	switch v.Kind() {
	case KindString:
		lines := splitLines(v.Str())
		if len(lines) > 1 {
			fmt.Fprintf(w, "%s:\n", key)
			for _, line := range lines {
				fmt.Fprintf(w, "  %s\n", line)
			}
		} else {
			fmt.Fprintf(w, "%s: %s\n", key, strings.Join(lines, ""))
		}
	case KindMap:
		fmt.Fprintf(w, "%s:\n", key)
		for _, k := range v.SortedKeys() {
			fmt.Fprintf(w, "  %s: %s\n", k, v.m[k])
		}
	case KindList:
		fmt.Fprintf(w, "%s:\n", key)
		for _, item := range v.list {
			fmt.Fprintf(w, "  %s\n", item)
		}
	default:
		return errors.Newf(errors.ErrUnsupportedValue, "Unsupported value type %s for key %q", v.Kind(), key)
	}

	origin := "(unknown)"
	if e.Source != nil {
		origin = e.Source.Origin()
	}
	_, err := fmt.Fprintf(w, "  [from %s]\n\n", origin)
	return err
}

// splitLines splits on \n, \r\n and \r without producing a trailing empty
// line for a terminating newline.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
