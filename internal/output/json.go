package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klytics/sheetviz/cmd/version"
)

// Exit codes for consistent error reporting.
const (
	ExitOK          = 0 // success
	ExitUserError   = 1 // bad flags, missing file, unknown column
	ExitSystemError = 2 // IO error, render failure
)

// JSONResult is the standard JSON output envelope for all commands and
// API responses.
type JSONResult struct {
	OK       bool        `json:"ok"`
	Command  string      `json:"command"`
	Version  string      `json:"version"`
	Data     interface{} `json:"data,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Error    string      `json:"error,omitempty"`
	Code     int         `json:"code,omitempty"`
}

// Result builds a success envelope.
func Result(cmd string, data interface{}, warnings ...string) JSONResult {
	return JSONResult{
		OK:       true,
		Command:  cmd,
		Version:  version.Version,
		Data:     data,
		Warnings: warnings,
	}
}

// ErrorResult builds a failure envelope.
func ErrorResult(cmd string, err error, code int) JSONResult {
	return JSONResult{
		OK:      false,
		Command: cmd,
		Version: version.Version,
		Error:   err.Error(),
		Code:    code,
	}
}

// WriteJSON writes a success envelope to w.
func WriteJSON(w io.Writer, cmd string, data interface{}, warnings ...string) error {
	return Encode(w, Result(cmd, data, warnings...))
}

// WriteJSONError writes a failure envelope to w.
func WriteJSONError(w io.Writer, cmd string, err error, code int) error {
	if encErr := Encode(w, ErrorResult(cmd, err, code)); encErr != nil {
		return fmt.Errorf("could not encode JSON error: %w", encErr)
	}
	return nil
}

// Encode writes v as indented JSON.
func Encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
