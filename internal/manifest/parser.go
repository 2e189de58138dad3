package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/values"
	"go.yaml.in/yaml/v3"
)

// TryRead parses the manifest of template name under repoDir. It returns
// nil and no error when the template directory has no manifest, which is
// how callers detect an unknown template. A manifest that fails to parse or
// validate is an ErrManifestInvalid error.
func TryRead(repoDir, name string) (*Spec, error) {
	if !filepath.IsLocal(name) || strings.ContainsRune(name, filepath.Separator) {
		return nil, nil
	}

	dir := filepath.Join(repoDir, name)
	path := filepath.Join(dir, FileName)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking manifest %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data, path, dir)
}

// ReadAll returns every template under repoDir in name order. Directories
// without a manifest are skipped.
func ReadAll(repoDir string) ([]*Spec, error) {
	entries, err := os.ReadDir(repoDir)
	if err != nil {
		return nil, fmt.Errorf("listing templates in %s: %w", repoDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var specs []*Spec
	for _, name := range names {
		spec, err := TryRead(repoDir, name)
		if err != nil {
			return nil, err
		}
		if spec != nil {
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

func parse(data []byte, path, dir string) (*Spec, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestInvalid, "invalid manifest %s", path)
	}
	if !result.Valid {
		return nil, errors.Newf(errors.ErrManifestInvalid, "invalid manifest %s: %s", path, result.Summary()).
			WithDetail("issues", result.Issues)
	}

	raw, err := parseTyped[rawManifest](data, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "invalid manifest")
	}

	spec := &Spec{
		Name:        filepath.Base(dir),
		Description: DefaultDescription,
		Path:        path,
		Dir:         dir,
		Filters:     raw.Filters,
		Globals:     raw.Globals,
	}
	if raw.Description != nil {
		spec.Description = *raw.Description
	}
	if spec.Filters == nil {
		spec.Filters = map[string]string{}
	}

	spec.values, err = values.FromMap(path, raw.TemplateValues)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "invalid template-values")
	}

	for i, f := range raw.Files {
		if !filepath.IsLocal(f.Source) {
			return nil, errors.Newf(errors.ErrManifestInvalid,
				"invalid manifest %s: files[%d].source %q must be relative to the template directory", path, i, f.Source)
		}
		isTemplate := true
		if f.Template != nil {
			isTemplate = *f.Template
		}
		spec.Files = append(spec.Files, &FileDirective{
			Output:     f.Output,
			Source:     f.Source,
			SourcePath: filepath.Join(dir, f.Source),
			Template:   isTemplate,
		})
	}

	for _, c := range raw.Commands {
		spec.Commands = append(spec.Commands, &CommandDirective{
			Command: c.Command,
			Dir:     c.Dir,
		})
	}

	return spec, nil
}

// parseTyped unmarshals YAML data into a typed struct.
func parseTyped[T any](data []byte, path string) (*T, error) {
	var m T
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
