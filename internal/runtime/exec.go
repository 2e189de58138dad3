package runtime

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Exec runs a program directly, without a shell, capturing its output.
// Like Runner.Run, a non-zero exit is reported through Output.ExitCode.
func Exec(ctx context.Context, dir, name string, args ...string) (*Output, error) {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stdoutBuf, stderrBuf bytes.Buffer
	c.Stdout = &stdoutBuf
	c.Stderr = &stderrBuf

	return finish(c.Run(), &stdoutBuf, &stderrBuf, name+" "+strings.Join(args, " "))
}
