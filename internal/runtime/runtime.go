package runtime

import (
	"context"
	"strings"
)

// Runner executes a command line in a working directory.
type Runner interface {
	// Run executes cmd. A command that starts but exits non-zero returns its
	// Output and a nil error; the caller decides whether that is a failure.
	Run(ctx context.Context, cmd Command) (*Output, error)
}

// Command is a shell command line and where to run it.
type Command struct {
	Line string
	Dir  string
	// Env holds variables added to the inherited process environment.
	Env map[string]string
}

// Output captures the result of a command execution.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited zero.
func (o *Output) Success() bool {
	return o != nil && o.ExitCode == 0
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
