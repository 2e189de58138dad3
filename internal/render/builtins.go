package render

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/ptool-dev/ptool/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Git server configuration keys read by the git_* filters.
const (
	gitKeyProtocol = "protocol"
	gitKeyHost     = "host"
	gitKeyGroup    = "group"
)

// GitCloneURL composes the clone URL of project on server, e.g.
// https://github.com/acme/widget.git. Only the https protocol is supported.
func GitCloneURL(project string, server interface{}) (string, error) {
	base, err := gitBaseURL(project, server)
	if err != nil {
		return "", err
	}
	return base + ".git", nil
}

// GitURL composes the browsable URL of project on server.
func GitURL(project string, server interface{}) (string, error) {
	return gitBaseURL(project, server)
}

// GitGroup returns the group (organization) of a git server configuration.
func GitGroup(server interface{}) (string, error) {
	return serverField(server, gitKeyGroup)
}

func gitBaseURL(project string, server interface{}) (string, error) {
	protocol, err := serverField(server, gitKeyProtocol)
	if err != nil {
		return "", err
	}
	if protocol != "https" {
		return "", errors.Newf(errors.ErrUnsupportedProtocol, "Unsupported Git protocol %s", protocol)
	}
	host, err := serverField(server, gitKeyHost)
	if err != nil {
		return "", err
	}
	group, err := serverField(server, gitKeyGroup)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, host, group, project), nil
}

func serverField(server interface{}, key string) (string, error) {
	switch s := server.(type) {
	case map[string]string:
		if v, ok := s[key]; ok {
			return v, nil
		}
	case map[string]interface{}:
		if v, ok := s[key]; ok {
			return fmt.Sprint(v), nil
		}
	default:
		return "", fmt.Errorf("git server configuration must be a map, got %T", server)
	}
	return "", fmt.Errorf("git server configuration has no %q", key)
}

func join(sep string, items interface{}) (string, error) {
	switch v := items.(type) {
	case []string:
		return strings.Join(v, sep), nil
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("join: cannot join %T", items)
	}
}

// index replaces the text/template builtin of the same name, which
// returns the zero value for absent map keys even under missingkey=error.
// Every step must hit an existing key or an in-range position.
func index(item interface{}, keys ...interface{}) (interface{}, error) {
	v := reflect.ValueOf(item)
	for _, key := range keys {
		for v.IsValid() && v.Kind() == reflect.Interface {
			v = v.Elem()
		}
		if !v.IsValid() {
			return nil, fmt.Errorf("index of untyped nil")
		}

		switch v.Kind() {
		case reflect.Map:
			k := reflect.ValueOf(key)
			if !k.IsValid() || !k.Type().AssignableTo(v.Type().Key()) {
				return nil, fmt.Errorf("cannot index %s with %T", v.Type(), key)
			}
			elem := v.MapIndex(k)
			if !elem.IsValid() {
				return nil, fmt.Errorf("map has no entry for key %q", fmt.Sprint(key))
			}
			v = elem
		case reflect.Slice, reflect.Array, reflect.String:
			i, ok := position(key)
			if !ok {
				return nil, fmt.Errorf("cannot index %s with %T", v.Type(), key)
			}
			if i < 0 || i >= v.Len() {
				return nil, fmt.Errorf("index out of range: %d", i)
			}
			v = v.Index(i)
		default:
			return nil, fmt.Errorf("cannot index %s", v.Type())
		}
	}
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

func position(key interface{}) (int, bool) {
	k := reflect.ValueOf(key)
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(k.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(k.Uint()), true
	}
	return 0, false
}

func title(s string) string { return cases.Title(language.English).String(s) }

// builtinFuncs returns the filters that do not depend on context state.
func builtinFuncs() map[string]interface{} {
	return map[string]interface{}{
		"git_clone_url":   GitCloneURL,
		"git_url":         GitURL,
		"git_group":       GitGroup,
		"snake":           strcase.ToSnake,
		"camel":           strcase.ToCamel,
		"lower_camel":     strcase.ToLowerCamel,
		"kebab":           strcase.ToKebab,
		"screaming_snake": strcase.ToScreamingSnake,
		"upper":           strings.ToUpper,
		"lower":           strings.ToLower,
		"title":           title,
		"join":            join,
		"index":           index,
	}
}
