package scaffold

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/logging"
	"github.com/ptool-dev/ptool/internal/manifest"
	"github.com/ptool-dev/ptool/internal/render"
	"github.com/ptool-dev/ptool/internal/runtime"
	"github.com/ptool-dev/ptool/internal/values"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Options describe one generation run.
type Options struct {
	Spec      *manifest.Spec
	OutputDir string
	Force     bool
	// Values is the resolved mapping, usually from ResolveValues.
	Values *values.Resolved
	// ConfigPath is named in the missing-values message.
	ConfigPath string
	// LookupDirs are searched by include. Defaults to the template
	// directory followed by the repository root.
	LookupDirs []string
}

// Result holds the outcome of a generation run.
type Result struct {
	OutputDir string
	Files     []string // output paths relative to OutputDir, in manifest order
	Commands  []string // rendered command lines, in run order
	Warnings  []string
}

// Generator writes projects through an afero filesystem and runs commands
// through a runtime.Runner.
type Generator struct {
	Fs     afero.Fs
	Runner runtime.Runner

	log zerolog.Logger
}

// NewGenerator returns a Generator. A nil fs means the OS filesystem and a
// nil runner means the platform shell.
func NewGenerator(fs afero.Fs, runner runtime.Runner) *Generator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if runner == nil {
		runner = &runtime.ShellRunner{}
	}
	return &Generator{
		Fs:     fs,
		Runner: runner,
		log:    logging.GetLogger("scaffold"),
	}
}

// plannedFile is a fully rendered file waiting to be written.
type plannedFile struct {
	rel     string
	content []byte
}

type plannedCommand struct {
	line string
	dir  string
}

// CheckOutputDir fails with an informational error when dir exists and
// force is not set.
func (g *Generator) CheckOutputDir(dir string, force bool) error {
	exists, err := afero.Exists(g.Fs, dir)
	if err != nil {
		return fmt.Errorf("checking output directory %s: %w", dir, err)
	}
	if exists && !force {
		return errors.Newf(errors.ErrOutputExists,
			"Output directory %q already exists: force overwrite with --force", dir)
	}
	return nil
}

// Generate renders opts.Spec into opts.OutputDir and runs its commands.
// Nothing is written until every value is known and every template has
// rendered. A failure while writing or running commands leaves earlier
// output in place.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	done := logging.LogOperationStart(g.log, "generate "+opts.Spec.Name)
	defer done()

	if err := g.CheckOutputDir(opts.OutputDir, opts.Force); err != nil {
		return nil, err
	}

	resolved := opts.Values
	if resolved == nil {
		resolved = values.Merge(opts.Spec.ValueSource())
	}

	if err := checkMissing(opts.Spec, resolved, opts.ConfigPath); err != nil {
		return nil, err
	}

	lookupDirs := opts.LookupDirs
	if len(lookupDirs) == 0 {
		lookupDirs = []string{opts.Spec.Dir, filepath.Dir(opts.Spec.Dir)}
	}

	rc, err := render.New(render.Options{
		LookupDirs:  lookupDirs,
		TemplateDir: opts.Spec.Dir,
		Filters:     opts.Spec.Filters,
		Values:      resolved,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{OutputDir: opts.OutputDir}
	result.Warnings = append(result.Warnings, g.unvalidatedKeys(opts.Spec, rc)...)

	if err := renderGlobals(rc, opts.Spec); err != nil {
		return nil, err
	}

	files, err := planFiles(rc, opts.Spec)
	if err != nil {
		return nil, err
	}
	commands, err := planCommands(rc, opts.Spec, opts.OutputDir)
	if err != nil {
		return nil, err
	}

	if opts.Force {
		if err := g.Fs.RemoveAll(opts.OutputDir); err != nil {
			return nil, fmt.Errorf("removing output directory %s: %w", opts.OutputDir, err)
		}
	}

	if err := g.Fs.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	for _, f := range files {
		if err := g.write(opts.OutputDir, f); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, f.rel)
	}

	for _, c := range commands {
		if err := g.run(ctx, c); err != nil {
			return nil, err
		}
		result.Commands = append(result.Commands, c.line)
	}

	return result, nil
}

// requiredKeys returns the sorted keys the directives and globals read,
// less the keys the globals themselves define.
func requiredKeys(spec *manifest.Spec) ([]string, error) {
	keys, err := spec.Keys()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	for _, g := range spec.Globals {
		refs, err := render.ReferencedKeys(g.Template)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrRender, "scanning global %s", g.Name)
		}
		for _, k := range refs {
			seen[k] = struct{}{}
		}
	}
	for _, g := range spec.Globals {
		delete(seen, g.Name)
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func checkMissing(spec *manifest.Spec, resolved *values.Resolved, configPath string) error {
	keys, err := requiredKeys(spec)
	if err != nil {
		return err
	}
	missing := resolved.Missing(keys)
	if len(missing) == 0 {
		return nil
	}

	quoted := make([]string, len(missing))
	for i, k := range missing {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return errors.Newf(errors.ErrMissingValues,
		"Provide values for %s in %s or via command line", strings.Join(quoted, ", "), configPath).
		WithDetail("missing", missing)
}

// unvalidatedKeys warns about keys that filters read but the directive scan
// did not check. They still fail at render time if absent.
func (g *Generator) unvalidatedKeys(spec *manifest.Spec, rc *render.Context) []string {
	required, err := requiredKeys(spec)
	if err != nil {
		return nil
	}
	checked := make(map[string]bool, len(required))
	for _, k := range required {
		checked[k] = true
	}

	var unchecked []string
	for _, k := range rc.FilterValueKeys() {
		if !checked[k] {
			unchecked = append(unchecked, k)
		}
	}
	if len(unchecked) == 0 {
		return nil
	}

	msg := fmt.Sprintf("Filters in template %s read values not checked before generation: %s",
		spec.Name, strings.Join(unchecked, ", "))
	g.log.Warn().Strs("keys", unchecked).Str("template", spec.Name).Msg(msg)
	return []string{msg}
}

// renderGlobals renders globals in manifest order. Each global is visible to
// the ones after it.
func renderGlobals(rc *render.Context, spec *manifest.Spec) error {
	if len(spec.Globals) == 0 {
		return nil
	}

	origin := spec.Path + " (globals)"
	base := rc.Values()
	rendered := make(map[string]values.Value, len(spec.Globals))
	for _, g := range spec.Globals {
		s, err := rc.RenderString(g.Template)
		if err != nil {
			return errors.Wrapf(err, errors.ErrRender, "rendering global %s", g.Name)
		}
		rendered[g.Name] = values.String(s)
		rc.SetValues(base.With(values.NewSource(origin, rendered)))
	}
	return nil
}

func planFiles(rc *render.Context, spec *manifest.Spec) ([]plannedFile, error) {
	files := make([]plannedFile, 0, len(spec.Files))
	for _, f := range spec.Files {
		rel, err := rc.RenderString(f.Output)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrRender, "rendering output path of %s", f.Source)
		}
		rel, err = localPath(rel, "output path of "+f.Source)
		if err != nil {
			return nil, err
		}

		var content string
		if f.Template {
			content, err = rc.RenderFile(f.SourcePath)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrRender, "generating %s", rel)
			}
		} else {
			content, err = f.Content()
			if err != nil {
				return nil, err
			}
		}
		files = append(files, plannedFile{rel: rel, content: []byte(content)})
	}
	return files, nil
}

func planCommands(rc *render.Context, spec *manifest.Spec, outputDir string) ([]plannedCommand, error) {
	commands := make([]plannedCommand, 0, len(spec.Commands))
	for _, c := range spec.Commands {
		line, err := rc.RenderString(c.Command)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrRender, "rendering command %q", c.Command)
		}

		dir := outputDir
		if c.Dir != "" {
			rel, err := rc.RenderString(c.Dir)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrRender, "rendering directory of command %q", c.Command)
			}
			rel, err = localPath(rel, "directory of command "+line)
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(outputDir, rel)
		}
		commands = append(commands, plannedCommand{line: line, dir: dir})
	}
	return commands, nil
}

// localPath cleans a rendered relative path and rejects anything that would
// land outside the output directory.
func localPath(rendered, what string) (string, error) {
	p := filepath.FromSlash(strings.TrimSpace(rendered))
	if !filepath.IsLocal(p) {
		return "", errors.Newf(errors.ErrPathEscape,
			"%s renders to %q, which is outside the output directory", what, rendered)
	}
	return filepath.Clean(p), nil
}

func (g *Generator) write(outputDir string, f plannedFile) error {
	target := filepath.Join(outputDir, f.rel)
	if err := g.Fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.rel, err)
	}
	if err := afero.WriteFile(g.Fs, target, f.content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	g.log.Debug().Str("path", target).Int("bytes", len(f.content)).Msg("Wrote file")
	return nil
}

func (g *Generator) run(ctx context.Context, c plannedCommand) error {
	if err := g.Fs.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating command directory %s: %w", c.dir, err)
	}

	g.log.Info().Str("dir", c.dir).Str("command", c.line).Msg("Running command")
	out, err := g.Runner.Run(ctx, runtime.Command{Line: c.line, Dir: c.dir})
	if err != nil {
		return errors.Wrapf(err, errors.ErrCommandFailed, "running %q", c.line)
	}
	if !out.Success() {
		return errors.Newf(errors.ErrCommandFailed, "command %q exited with status %d", c.line, out.ExitCode).
			WithDetail("stderr", out.Stderr)
	}
	return nil
}
