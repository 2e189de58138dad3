package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ptool-dev/ptool/internal/errors"
)

// RenderError reports a template that failed to compile or execute.
// Source is the template file path or "inline"; Line is zero when unknown.
type RenderError struct {
	Source string
	Line   int
	Err    error

	detail string
}

func newRenderError(source string, err error) error {
	var inner *RenderError
	if errors.As(err, &inner) {
		return inner
	}
	line, detail := splitLocation(source, err.Error())
	return &RenderError{Source: source, Line: line, Err: err, detail: detail}
}

func (e *RenderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("rendering %s at line %d: %s", e.Source, e.Line, e.detail)
	}
	return fmt.Sprintf("rendering %s: %s", e.Source, e.detail)
}

func (e *RenderError) Unwrap() error { return e.Err }

// splitLocation strips the "template: NAME:LINE[:COL]:" prefix produced by
// text/template and returns the line with the remaining message.
func splitLocation(source, msg string) (int, string) {
	prefix := "template: " + source + ":"
	if !strings.HasPrefix(msg, prefix) {
		return 0, msg
	}
	rest := msg[len(prefix):]

	n := leadingDigits(rest)
	if n == 0 {
		return 0, msg
	}
	line, _ := strconv.Atoi(rest[:n])
	rest = rest[n:]

	if strings.HasPrefix(rest, ":") {
		rest = rest[1:]
		rest = rest[leadingDigits(rest):]
		rest = strings.TrimPrefix(rest, ":")
	}
	return line, strings.TrimSpace(rest)
}

func leadingDigits(s string) int {
	i := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	return i
}
