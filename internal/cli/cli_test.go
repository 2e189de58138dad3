package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv points the CLI at a temporary store and a local template
// repository.
type testEnv struct {
	configDir string
	repoDir   string
	workDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		configDir: filepath.Join(t.TempDir(), "store"),
		repoDir:   t.TempDir(),
		workDir:   t.TempDir(),
	}
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("PTOOL_TEMPLATES", env.repoDir)
	t.Setenv("PTOOL_HOME", "")
	t.Setenv("PTOOL_AUTHOR", "")
	os.Unsetenv("PTOOL_AUTHOR")

	env.writeFile(t, "app/_ptool.yaml", `description: Application skeleton
template-values:
  license: MIT
files:
  - output: README.md
    source: README.md.tmpl
  - output: "src/{{ namespace .project_name }}.txt"
    source: main.txt
    template: false
`)
	env.writeFile(t, "app/README.md.tmpl", "# {{ .project_name }} by {{ .author }} ({{ .license }})\n")
	env.writeFile(t, "app/main.txt", "{{ verbatim }}\n")
	env.writeFile(t, "library/_ptool.yaml", "files:\n  - output: x.txt\n    source: x.tmpl\n")
	env.writeFile(t, "library/x.tmpl", "{{ .maintainer }}\n")
	env.writeFile(t, "notes/README.md", "not a template\n")
	return env
}

func (e *testEnv) writeFile(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(e.repoDir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func resetFlags() {
	verbosity = 0
	configDir = ""
	newForce = false
	updateRepair = false
	versionFormat.short = false
	versionFormat.json = false
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config-dir", e.configDir}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestTemplatesCommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "templates")
	require.NoError(t, err)
	assert.Equal(t, "app        Application skeleton\nlibrary    (no description)\n", out)
	assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"), "store is seeded on first use")
}

func TestValuesCommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "values", "app", "license=BSD")
	require.NoError(t, err)

	assert.Contains(t, out, "project_name: example-project-name-ABC\n  [from (project)]\n\n")
	assert.Contains(t, out, "license: BSD\n  [from (command line)]\n\n")
	assert.Contains(t, out, "author: Some Author\n  [from "+filepath.Join(env.configDir, "config.yaml")+"]\n\n")
	assert.Contains(t, out, "git_server:\n  group: someauthor\n  host: github.com\n  protocol: https\n")
}

func TestValuesCommand_UnknownTemplate(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "values", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateNotFound))
}

func TestNewCommand(t *testing.T) {
	env := newTestEnv(t)
	outputDir := filepath.Join(env.workDir, "my-app")

	out, _, err := env.run(t, "new", "app", outputDir, "author=Jane")
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+outputDir+"\n")

	readme, err := os.ReadFile(filepath.Join(outputDir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# my-app by Jane (MIT)\n", string(readme))

	literal, err := os.ReadFile(filepath.Join(outputDir, "src", "my_app.txt"))
	require.NoError(t, err)
	assert.Equal(t, "{{ verbatim }}\n", string(literal))

	// A second run needs --force.
	_, _, err = env.run(t, "new", "app", outputDir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrOutputExists))

	_, _, err = env.run(t, "new", "--force", "app", outputDir, "author=Bob")
	require.NoError(t, err)
	readme, err = os.ReadFile(filepath.Join(outputDir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# my-app by Bob (MIT)\n", string(readme))
}

func TestNewCommand_MissingValues(t *testing.T) {
	env := newTestEnv(t)
	outputDir := filepath.Join(env.workDir, "lib")

	_, _, err := env.run(t, "new", "library", outputDir)
	require.Error(t, err)
	assert.True(t, errors.IsInformational(err))
	assert.Equal(t,
		`Provide values for "maintainer" in `+filepath.Join(env.configDir, "config.yaml")+` or via command line`,
		err.Error())
	assert.NoDirExists(t, outputDir)
}

func TestNewCommand_MalformedPair(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "new", "app", filepath.Join(env.workDir, "x"), "novalue")
	require.Error(t, err)
	assert.False(t, errors.IsInformational(err))
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "config", "set", "author", "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "Set author = Jane Doe\n", out)

	out, _, err = env.run(t, "config", "get", "author")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n", out)

	_, _, err = env.run(t, "config", "get", "no_such_key")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad), "got %v", err)

	out, _, err = env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.configDir, "config.yaml")+"\n", out)
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	buildVersion, buildCommit, buildDate = "1.4.0", "abc123", "2026-01-02"
	defer func() { buildVersion, buildCommit, buildDate = "", "", "" }()

	out, _, err := env.run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0\n", out)

	out, _, err = env.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ptool version 1.4.0 (commit: abc123, built: 2026-01-02)\n", out)

	out, _, err = env.run(t, "version", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.4.0","commit":"abc123","date":"2026-01-02"}`, out)
}

func TestIncompatibleRepository(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "_ptool.yaml", "ptool-version: \">= 2.0\"\n")
	buildVersion = "1.4.0"
	defer func() { buildVersion = "" }()

	_, _, err := env.run(t, "templates")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIncompatibleRepo))
}
