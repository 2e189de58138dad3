package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"text/template"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/expr"
	"github.com/ptool-dev/ptool/internal/extension"
	"github.com/ptool-dev/ptool/internal/logging"
	"github.com/ptool-dev/ptool/internal/naming"
	"github.com/ptool-dev/ptool/internal/values"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
)

// InlineSource names templates compiled from strings in errors.
const InlineSource = "inline"

// Options configure a new Context.
type Options struct {
	// LookupDirs are searched in order when a template includes another.
	LookupDirs []string
	// TemplateDir is checked for an extension file. Empty skips extensions.
	TemplateDir string
	// Filters maps custom filter names to expression bodies.
	Filters map[string]string
	// Values is the resolved value mapping templates render against.
	Values *values.Resolved
}

// Context compiles and renders templates against one resolved value
// mapping.
type Context struct {
	lookupDirs []string
	resolved   *values.Resolved
	data       map[string]interface{}
	valuesObj  *cty.Value

	funcs   template.FuncMap
	filters map[string]*expr.Filter
	sealed  bool

	fromStrings map[string]*template.Template
	fromFiles   map[string]*template.Template
	tokens      *naming.Cache
	including   []string

	ext *extension.Extension
	log zerolog.Logger
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// New builds a Context. Custom filter bodies are not parsed here; a broken
// body only fails when the filter is invoked.
func New(opts Options) (*Context, error) {
	resolved := opts.Values
	if resolved == nil {
		resolved = values.Merge()
	}

	c := &Context{
		lookupDirs:  append([]string(nil), opts.LookupDirs...),
		funcs:       make(template.FuncMap),
		filters:     make(map[string]*expr.Filter),
		fromStrings: make(map[string]*template.Template),
		fromFiles:   make(map[string]*template.Template),
		tokens:      naming.NewCache(),
		log:         logging.GetLogger("render"),
	}
	c.SetValues(resolved)

	for name, fn := range builtinFuncs() {
		c.funcs[name] = fn
	}
	c.funcs["namespace"] = func(s string) string { return c.Tokenize(s).Namespace() }
	c.funcs["module_name"] = func(s string) string { return c.Tokenize(s).ModuleName() }
	c.funcs["fragments"] = func(s string) []string { return c.Tokenize(s).Fragments() }
	c.funcs["include"] = c.include

	names := make([]string, 0, len(opts.Filters))
	for name := range opts.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := expr.NewFilter(name, opts.Filters[name])
		c.filters[name] = f
		if err := c.RegisterFilter(name, c.customFilter(f)); err != nil {
			return nil, err
		}
	}

	if opts.TemplateDir != "" {
		ext, err := extension.Load(opts.TemplateDir, c)
		if err != nil {
			return nil, err
		}
		if ext != nil && !ext.HasEntryPoint {
			c.log.Warn().
				Str("dir", opts.TemplateDir).
				Msgf("Template in directory %s has no ptool entrypoint %s", opts.TemplateDir, extension.EntryPoint)
		}
		c.ext = ext
	}

	return c, nil
}

// RegisterFilter adds a named function usable from templates. fn must be a
// function returning one value, or a value and an error. Registration is
// closed once the first template has been compiled.
func (c *Context) RegisterFilter(name string, fn interface{}) error {
	if c.sealed {
		return fmt.Errorf("cannot register filter %q: context sealed after first compile", name)
	}
	if !isIdentifier(name) {
		return fmt.Errorf("filter name %q is not a valid identifier", name)
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("filter %q must be a function, got %T", name, fn)
	}
	t := v.Type()
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return fmt.Errorf("filter %q must return a value or a value and an error", name)
	}

	if _, exists := c.funcs[name]; exists {
		c.log.Debug().Str("filter", name).Msg("Overriding filter")
	}
	c.funcs[name] = fn
	return nil
}

// Tokenize returns the cached tokens for raw.
func (c *Context) Tokenize(raw string) *naming.Tokens {
	return c.tokens.Get(raw)
}

// Value looks up a single resolved value.
func (c *Context) Value(key string) (interface{}, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, errors.Newf(errors.ErrKeyNotFound, "key %q not found", key)
	}
	return v, nil
}

// Keys returns the resolved keys in lexical order.
func (c *Context) Keys() []string {
	return c.resolved.Keys()
}

// Values returns the mapping templates render against.
func (c *Context) Values() *values.Resolved {
	return c.resolved
}

// SetValues replaces the mapping templates render against. Compiled
// templates stay cached.
func (c *Context) SetValues(r *values.Resolved) {
	c.resolved = r
	c.data = r.Data()
	c.valuesObj = nil
}

// Extension returns the loaded extension, or nil.
func (c *Context) Extension() *extension.Extension {
	return c.ext
}

// FilterValueKeys lists the value keys referenced inside custom filter
// bodies and extension filters.
func (c *Context) FilterValueKeys() []string {
	seen := make(map[string]struct{})
	for _, f := range c.filters {
		for _, k := range f.ValueKeys() {
			seen[k] = struct{}{}
		}
	}
	if c.ext != nil {
		for _, k := range c.ext.ValueKeys {
			seen[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderString renders an inline template.
func (c *Context) RenderString(src string) (string, error) {
	t, ok := c.fromStrings[src]
	if !ok {
		var err error
		t, err = c.compile(InlineSource, src)
		if err != nil {
			return "", err
		}
		c.fromStrings[src] = t
	}
	return c.execute(t, InlineSource)
}

// RenderFile renders the template file at path.
func (c *Context) RenderFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving template path %s: %w", path, err)
	}

	t, ok := c.fromFiles[abs]
	if !ok {
		data, err := os.ReadFile(abs)
		if err != nil {
			return "", fmt.Errorf("reading template %s: %w", path, err)
		}
		t, err = c.compile(abs, string(data))
		if err != nil {
			return "", err
		}
		c.fromFiles[abs] = t
	}
	return c.execute(t, abs)
}

// CacheSize reports the number of compiled string and file templates.
func (c *Context) CacheSize() (inline, files int) {
	return len(c.fromStrings), len(c.fromFiles)
}

func (c *Context) compile(source, text string) (*template.Template, error) {
	c.sealed = true
	t, err := template.New(source).Option("missingkey=error").Funcs(c.funcs).Parse(text)
	if err != nil {
		return nil, newRenderError(source, err)
	}
	c.log.Trace().Str("source", source).Msg("Compiled template")
	return t, nil
}

func (c *Context) execute(t *template.Template, source string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, c.data); err != nil {
		return "", newRenderError(source, err)
	}
	return buf.String(), nil
}

func (c *Context) customFilter(f *expr.Filter) func(args ...interface{}) (interface{}, error) {
	return func(args ...interface{}) (interface{}, error) {
		obj, err := c.valuesObject()
		if err != nil {
			return nil, err
		}
		return f.Call(obj, c.Tokenize, args...)
	}
}

func (c *Context) valuesObject() (cty.Value, error) {
	if c.valuesObj == nil {
		obj, err := expr.ObjectOf(c.data)
		if err != nil {
			return cty.NilVal, fmt.Errorf("converting values for filters: %w", err)
		}
		c.valuesObj = &obj
	}
	return *c.valuesObj, nil
}

// include renders another template found in the lookup directories. The
// first directory containing name wins.
func (c *Context) include(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("include %q: path must be relative and stay inside the template directories", name)
	}

	path := ""
	for _, dir := range c.lookupDirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			path = candidate
			break
		}
	}
	if path == "" {
		return "", fmt.Errorf("include %q: not found in %s", name, strings.Join(c.lookupDirs, ", "))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("include %q: %w", name, err)
	}
	for _, p := range c.including {
		if p == abs {
			return "", fmt.Errorf("include %q: cycle detected", name)
		}
	}

	c.including = append(c.including, abs)
	defer func() { c.including = c.including[:len(c.including)-1] }()

	return c.RenderFile(abs)
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}
