package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PTOOL_HOME", "PTOOL_TEMPLATES", "PTOOL_TEMPLATES_REPO_URL", "PTOOL_TEMPLATES_REPO", "PTOOL_AUTHOR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestEnsure_SeedsDefaultConfig(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "store")

	c, err := Ensure(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, c.Dir())
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	src, err := c.ValueSource()
	require.NoError(t, err)
	assert.Equal(t, c.FilePath(), src.Origin())

	author, ok := src.Get("author")
	require.True(t, ok)
	assert.Equal(t, "Some Author", author.Str())

	server, ok := src.Get("git_server")
	require.True(t, ok)
	assert.Equal(t, values.KindMap, server.Kind())
	assert.Equal(t, map[string]string{"protocol": "https", "group": "someauthor", "host": "github.com"}, server.Entries())
}

func TestEnsure_KeepsExistingConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("author: Jane\nTeam: core\n"), 0644))

	c, err := Ensure(dir)
	require.NoError(t, err)

	src, err := c.ValueSource()
	require.NoError(t, err)
	assert.Equal(t, []string{"author", "team"}, src.Keys(), "keys are lower-cased")
}

func TestEnsure_MalformedConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("author: [unclosed\n"), 0644))

	_, err := Ensure(dir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestValueSource_NestedValueRejected(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("deep:\n  a:\n    b: c\n"), 0644))

	c, err := Ensure(dir)
	require.NoError(t, err)
	_, err = c.ValueSource()
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	c, err := Ensure(t.TempDir())
	require.NoError(t, err)

	t.Setenv("PTOOL_AUTHOR", "From Env")
	assert.Equal(t, "From Env", c.Get("author"))
}

func TestGetSet(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	c, err := Ensure(dir)
	require.NoError(t, err)

	assert.Equal(t, "", c.Get("license"))
	assert.False(t, c.IsSet("license"))
	require.NoError(t, c.Set("license", "MIT"))
	assert.Equal(t, "MIT", c.Get("license"))

	reloaded, err := Ensure(dir)
	require.NoError(t, err)
	assert.Equal(t, "MIT", reloaded.Get("license"))
	assert.Equal(t, "Some Author", reloaded.Get("author"))
}

func TestDefaultDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("PTOOL_HOME", "/custom/store")
	assert.Equal(t, "/custom/store", DefaultDir())

	os.Unsetenv("PTOOL_HOME")
	home, err := os.UserHomeDir()
	if err == nil {
		assert.Equal(t, filepath.Join(home, ".ptool"), DefaultDir())
	}
}

func TestRepoDirAndURL(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	c, err := Ensure(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "ptool-templates"), c.RepoDir())
	assert.True(t, c.RepoManaged())
	assert.Equal(t, "https://github.com/rcook/ptool-templates.git", c.RepoURL())

	require.NoError(t, c.Set(RepoURLKey, "https://example.com/mine.git"))
	assert.Equal(t, "https://example.com/mine.git", c.RepoURL())

	t.Setenv("PTOOL_TEMPLATES_REPO_URL", "https://example.com/env.git")
	assert.Equal(t, "https://example.com/env.git", c.RepoURL())

	t.Setenv("PTOOL_TEMPLATES", "/local/templates")
	assert.Equal(t, "/local/templates", c.RepoDir())
	assert.False(t, c.RepoManaged())
}
