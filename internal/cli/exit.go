package cli

import (
	"fmt"
	"io"

	"github.com/ptool-dev/ptool/internal/errors"
)

// Exit codes returned by the ptool binary.
const (
	ExitOK            = 0
	ExitInformational = 1
	ExitFailure       = 2
)

// HandleError reports err and returns the process exit code. Informational
// errors print only their message to out; anything else prints
// "Error: <err>" to errOut.
func HandleError(out, errOut io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.IsInformational(err) {
		fmt.Fprintln(out, errors.Message(err))
		return ExitInformational
	}
	fmt.Fprintf(errOut, "Error: %v\n", err)
	return ExitFailure
}
