package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // pipeline/validation failure
	ExitCommandError = 2 // command error (bad paths, unreadable input, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Returns ExitFailure if
// the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose logs go here to avoid corrupting JSON
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
	RunID  string      `json:"run_id,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code     string `json:"code"` // stable S-code
	Category string `json:"category,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Message  string `json:"message"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}, runID string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
			RunID:  runID,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Failure outputs an error result in the configured format and returns an
// ExitError carrying the right exit code.
func (f *OutputFormatter) Failure(code int, cliErr *CLIError, runID string) error {
	if f.Format == "json" {
		if err := json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  cliErr,
			RunID:  runID,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ %s\n", cliErr.Message)
	}
	return &ExitError{Code: code, Message: cliErr.Message}
}

// VerboseLog writes a verbose message to ErrWriter when enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
