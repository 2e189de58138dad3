//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // PTOOL_HOME: config.yaml and the template clone
	OriginDir  string // git repository the templates are cloned from
	ProjectDir string // parent of generated projects
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so all ptool operations are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping")
	}

	env := &testEnv{
		HomeDir:    t.TempDir(),
		OriginDir:  t.TempDir(),
		ProjectDir: t.TempDir(),
	}

	t.Setenv("PTOOL_HOME", env.HomeDir)
	t.Setenv("PTOOL_TEMPLATES_REPO_URL", env.OriginDir)
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	os.Unsetenv("PTOOL_TEMPLATES")

	return env
}

// setupOrigin creates a template repository with a C++ library template and
// commits it.
func setupOrigin(t *testing.T, originDir string) {
	t.Helper()

	git(t, originDir, "init", "-q")

	writeFile(t, filepath.Join(originDir, "_ptool.yaml"), "ptool-version: \">= 1.0\"\n")

	writeManifest(t, originDir, "cpp-lib", `description: C++ library with CMake
template-values:
  cxx_standard: 17
filters:
  guard: 'upper("${namespace(values.project_name)}_${value}")'
globals:
  include_dir: "include/{{ namespace .project_name }}"
files:
  - output: CMakeLists.txt
    source: CMakeLists.txt.tmpl
  - output: "{{ .include_dir }}/{{ namespace .project_name }}.h"
    source: header.h.tmpl
  - output: LICENSE
    source: LICENSE
    template: false
commands:
  - command: git init -q
  - command: "echo {{ .author }} > AUTHORS"
    dir: "{{ .include_dir }}"
`)
	writeFile(t, filepath.Join(originDir, "cpp-lib", "CMakeLists.txt.tmpl"), `cmake_minimum_required(VERSION 3.10)
project({{ .project_name | module_name }} CXX)
set(CMAKE_CXX_STANDARD {{ .cxx_standard }})
# {{ git_url .project_name .git_server }}
`)
	writeFile(t, filepath.Join(originDir, "cpp-lib", "header.h.tmpl"), `#ifndef {{ "H" | guard }}
#define {{ "H" | guard }}
{{ include "_shared/banner.txt" }}
#endif
`)
	writeFile(t, filepath.Join(originDir, "cpp-lib", "LICENSE"), "Copyright {{ year }} nobody\n")
	writeFile(t, filepath.Join(originDir, "_shared", "banner.txt"), "// {{ .author }} <{{ .author_email }}>")

	git(t, originDir, "add", ".")
	git(t, originDir, "commit", "-q", "-m", "initial templates")
}

// writeManifest creates _ptool.yaml at repoDir/<name>/_ptool.yaml.
func writeManifest(t *testing.T, repoDir, name, content string) {
	t.Helper()
	writeFile(t, filepath.Join(repoDir, name, "_ptool.yaml"), content)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
