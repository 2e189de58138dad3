// Package runtime runs external processes on behalf of ptool: the shell
// commands a template declares and the git invocations that maintain the
// template repository.
package runtime
