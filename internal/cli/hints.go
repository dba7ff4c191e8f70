package cli

import (
	"fmt"
	"strings"
)

// PreflightError is a precondition failure with a suggested fix.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", e.Hint)
	}
	if e.NextStep != "" {
		fmt.Fprintf(&b, "\n  next: %s", e.NextStep)
	}
	return b.String()
}

// ExitError carries a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// Exit codes.
const (
	ExitCodeFailure = 1
	ExitCodeUsage   = 2
	ExitCodeAuth    = 3
)

// Exitf formats an ExitError.
func Exitf(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

func notSignedInError() error {
	return &ExitError{Code: ExitCodeAuth, Err: &PreflightError{
		Message:  "not signed in",
		Hint:     "pass --token, set PLASMID_AUTH_ID_TOKEN, or point auth.token_file at a saved id token",
		NextStep: "plasmid browse   # sign in interactively",
	}}
}

func missingEndpointError(err error) error {
	return &ExitError{Code: ExitCodeUsage, Err: &PreflightError{
		Message:  err.Error(),
		Hint:     "the endpoint is the deployed data script URL",
		NextStep: "plasmid --endpoint https://script.google.com/macros/s/<id>/exec query",
	}}
}

func noTTYError() error {
	return &ExitError{Code: ExitCodeUsage, Err: &PreflightError{
		Message:  "browse requires an interactive terminal",
		Hint:     "use the query or members commands for scripted access",
		NextStep: "plasmid query --search kan --json",
	}}
}
