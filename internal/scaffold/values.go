package scaffold

import (
	"path/filepath"
	"time"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/manifest"
	"github.com/ptool-dev/ptool/internal/values"
)

// ExampleProjectName is the project name used when previewing values.
const ExampleProjectName = "example-project-name-ABC"

// LoadTemplate reads template name from repoDir. An unknown template is an
// informational error.
func LoadTemplate(repoDir, name string) (*manifest.Spec, error) {
	spec, err := manifest.TryRead(repoDir, name)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, errors.Newf(errors.ErrTemplateNotFound, "No template %q found in %s", name, repoDir)
	}
	return spec, nil
}

// ProjectName derives the project name from the output directory.
func ProjectName(outputDir string) string {
	return filepath.Base(filepath.Clean(outputDir))
}

// ResolveValues layers the built-in project values, the template's
// defaults and then layers in order, lowest precedence first.
func ResolveValues(projectName string, now time.Time, spec *manifest.Spec, layers ...*values.Source) *values.Resolved {
	sources := make([]*values.Source, 0, len(layers)+2)
	sources = append(sources, values.Project(projectName, now), spec.ValueSource())
	sources = append(sources, layers...)
	return values.Merge(sources...)
}
