package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	goruntime "runtime"
	"sort"
)

// ShellRunner runs command lines through the platform shell, streaming
// output to the configured writers while also capturing it.
type ShellRunner struct {
	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes cmd.Line with "sh -c", or "cmd /C" on Windows.
func (s *ShellRunner) Run(ctx context.Context, cmd Command) (*Output, error) {
	name, args := shellArgs(goruntime.GOOS, cmd.Line)
	shell, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("running %q requires %s: %w", cmd.Line, name, err)
	}

	c := exec.CommandContext(ctx, shell, args...)
	c.Dir = cmd.Dir
	c.Env = buildEnv(cmd.Env)

	stdout := s.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := s.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	c.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	c.Stderr = io.MultiWriter(stderr, &stderrBuf)

	return finish(c.Run(), &stdoutBuf, &stderrBuf, cmd.Line)
}

func shellArgs(goos, line string) (string, []string) {
	if goos == "windows" {
		return "cmd", []string{"/C", line}
	}
	return "sh", []string{"-c", line}
}

func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, extra[k])
	}
	return env
}

func finish(err error, stdout, stderr *bytes.Buffer, what string) (*Output, error) {
	output := &Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			output.ExitCode = exitErr.ExitCode()
			return output, nil
		}
		return output, fmt.Errorf("executing %s: %w", what, err)
	}
	return output, nil
}
