package manifest

import (
	"fmt"
	"os"
	"sort"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/render"
	"github.com/ptool-dev/ptool/internal/values"
	"go.yaml.in/yaml/v3"
)

// FileName is the manifest file expected in each template directory.
const FileName = "_ptool.yaml"

// DefaultDescription is used when a manifest has no description.
const DefaultDescription = "(no description)"

// Spec is a parsed template manifest. It is read-only after parsing.
type Spec struct {
	Name        string // template directory name
	Description string
	Path        string // manifest file path
	Dir         string // template directory

	Filters  map[string]string
	Globals  []Global
	Files    []*FileDirective
	Commands []*CommandDirective

	values *values.Source
}

// Global is a value computed by rendering Template after values resolve.
type Global struct {
	Name     string
	Template string
}

// FileDirective describes one generated file.
type FileDirective struct {
	// Output is a template for the path relative to the output directory.
	Output string
	// Source is the path relative to the template directory.
	Source string
	// SourcePath is Source resolved against the template directory.
	SourcePath string
	// Template is false for files copied byte-for-byte.
	Template bool

	content *string
	keys    []string
}

// CommandDirective is a command run after all files are written.
type CommandDirective struct {
	// Command is a template for the shell command line.
	Command string
	// Dir is an optional template for the working directory relative to the
	// output directory.
	Dir string

	keys []string
}

// ValueSource returns the template's declared defaults.
func (s *Spec) ValueSource() *values.Source {
	return s.values
}

// Keys returns the sorted union of keys referenced by all file and command
// directives.
func (s *Spec) Keys() ([]string, error) {
	seen := make(map[string]struct{})
	for _, f := range s.Files {
		keys, err := f.Keys()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
	}
	for _, c := range s.Commands {
		keys, err := c.Keys()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

// Content returns the source file body, reading it once.
func (f *FileDirective) Content() (string, error) {
	if f.content == nil {
		data, err := os.ReadFile(f.SourcePath)
		if err != nil {
			return "", fmt.Errorf("reading template source %s: %w", f.SourcePath, err)
		}
		s := string(data)
		f.content = &s
	}
	return *f.content, nil
}

// Keys returns the keys referenced by the output path and, for templated
// files, the body.
func (f *FileDirective) Keys() ([]string, error) {
	if f.keys != nil {
		return f.keys, nil
	}

	seen := make(map[string]struct{})
	if err := collectKeys(seen, "output path of "+f.Source, f.Output); err != nil {
		return nil, err
	}
	if f.Template {
		content, err := f.Content()
		if err != nil {
			return nil, err
		}
		if err := collectKeys(seen, f.SourcePath, content); err != nil {
			return nil, err
		}
	}

	f.keys = sortedKeys(seen)
	return f.keys, nil
}

// Keys returns the keys referenced by the command line and directory.
func (c *CommandDirective) Keys() ([]string, error) {
	if c.keys != nil {
		return c.keys, nil
	}

	seen := make(map[string]struct{})
	if err := collectKeys(seen, "command "+c.Command, c.Command); err != nil {
		return nil, err
	}
	if err := collectKeys(seen, "directory of command "+c.Command, c.Dir); err != nil {
		return nil, err
	}

	c.keys = sortedKeys(seen)
	return c.keys, nil
}

func collectKeys(seen map[string]struct{}, source, text string) error {
	if text == "" {
		return nil
	}
	keys, err := render.ReferencedKeys(text)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRender, "scanning %s", source)
	}
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	return nil
}

func sortedKeys(seen map[string]struct{}) []string {
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rawManifest mirrors the YAML document.
type rawManifest struct {
	Description    *string                `yaml:"description"`
	TemplateValues map[string]interface{} `yaml:"template-values"`
	Filters        map[string]string      `yaml:"filters"`
	Globals        orderedStrings         `yaml:"globals"`
	Files          []rawFile              `yaml:"files"`
	Commands       []rawCommand           `yaml:"commands"`
}

type rawFile struct {
	Output   string `yaml:"output"`
	Source   string `yaml:"source"`
	Template *bool  `yaml:"template"`
}

type rawCommand struct {
	Command string `yaml:"command"`
	Dir     string `yaml:"dir"`
}

// orderedStrings decodes a string mapping while keeping document order.
type orderedStrings []Global

func (o *orderedStrings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	out := make(orderedStrings, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name, tmpl string
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&tmpl); err != nil {
			return err
		}
		out = append(out, Global{Name: name, Template: tmpl})
	}
	*o = out
	return nil
}
