package cli

import "fmt"

// ExitError represents a command execution failure with a specific exit
// code.
//
// It lets Cobra RunE functions signal non-zero exit codes without calling
// os.Exit directly, keeping command behavior testable. [Execute] extracts
// the code at the top level and performs the actual process exit.
type ExitError struct {
	// Code is the exit code to return to the shell.
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError checks whether err is an [ExitError] and extracts its code.
func IsExitError(err error) (int, bool) {
	if exitErr, ok := err.(*ExitError); ok {
		return exitErr.Code, true
	}
	return 0, false
}
