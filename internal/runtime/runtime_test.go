package runtime

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	name, _ := shellArgs(goruntime.GOOS, "")
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available, skipping", name)
	}
}

func TestShellArgs(t *testing.T) {
	name, args := shellArgs("linux", "echo hi")
	if name != "sh" || len(args) != 2 || args[0] != "-c" || args[1] != "echo hi" {
		t.Errorf("shellArgs(linux) = %s %v", name, args)
	}

	name, args = shellArgs("windows", "echo hi")
	if name != "cmd" || len(args) != 2 || args[0] != "/C" {
		t.Errorf("shellArgs(windows) = %s %v", name, args)
	}
}

func TestSetEnv(t *testing.T) {
	env := []string{"A=1", "B=2"}
	env = setEnv(env, "A", "x")
	env = setEnv(env, "C", "3")

	want := []string{"A=x", "B=2", "C=3"}
	if strings.Join(env, ",") != strings.Join(want, ",") {
		t.Errorf("setEnv = %v, want %v", env, want)
	}
}

func TestShellRunner_CapturesAndStreams(t *testing.T) {
	requireShell(t)
	if goruntime.GOOS == "windows" {
		t.Skip("uses POSIX shell syntax")
	}

	var stdout, stderr bytes.Buffer
	r := &ShellRunner{Stdout: &stdout, Stderr: &stderr}

	dir := t.TempDir()
	out, err := r.Run(context.Background(), Command{
		Line: `echo "$PTOOL_TEST_VAR"; pwd; echo oops >&2`,
		Dir:  dir,
		Env:  map[string]string{"PTOOL_TEST_VAR": "hello"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Success() {
		t.Fatalf("exit code = %d, want 0", out.ExitCode)
	}

	lines := strings.Split(strings.TrimSpace(out.Stdout), "\n")
	if len(lines) != 2 || lines[0] != "hello" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
	got, _ := filepath.EvalSymlinks(lines[1])
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("working directory = %s, want %s", got, want)
	}
	if out.Stderr != "oops\n" {
		t.Errorf("stderr = %q", out.Stderr)
	}
	if stdout.String() != out.Stdout || stderr.String() != out.Stderr {
		t.Error("output was not streamed to the configured writers")
	}
}

func TestShellRunner_NonZeroExit(t *testing.T) {
	requireShell(t)
	if goruntime.GOOS == "windows" {
		t.Skip("uses POSIX shell syntax")
	}

	r := &ShellRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	out, err := r.Run(context.Background(), Command{Line: "exit 3", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("non-zero exit should not be an error, got %v", err)
	}
	if out.Success() || out.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", out.ExitCode)
	}
}

func TestShellRunner_MissingDirectory(t *testing.T) {
	requireShell(t)

	r := &ShellRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err := r.Run(context.Background(), Command{
		Line: "echo hi",
		Dir:  filepath.Join(t.TempDir(), "missing"),
	})
	if err == nil {
		t.Fatal("expected error for missing working directory, got nil")
	}
}

func TestExec(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping")
	}

	out, err := Exec(context.Background(), t.TempDir(), "git", "--version")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !strings.HasPrefix(out.Stdout, "git version") {
		t.Errorf("stdout = %q", out.Stdout)
	}
}

func TestExec_MissingProgram(t *testing.T) {
	_, err := Exec(context.Background(), t.TempDir(), "ptool-no-such-program")
	if err == nil {
		t.Fatal("expected error for missing program, got nil")
	}
}

func TestOutput_SuccessNil(t *testing.T) {
	var o *Output
	if o.Success() {
		t.Error("nil output should not be a success")
	}
}
