// Package output provides formatting utilities for CLI output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format represents an output format.
type Format int

const (
	// FormatText is a human-readable table.
	FormatText Format = iota
	// FormatJSON is the JSON envelope.
	FormatJSON
	// FormatCSV is comma-separated values.
	FormatCSV
	// FormatHTML is an HTML fragment.
	FormatHTML
)

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "html":
		return FormatHTML, nil
	}
	return FormatText, fmt.Errorf("unknown format %q — use text, json, csv or html", name)
}

// Writer handles formatted output to a destination.
type Writer struct {
	dest   io.Writer
	format Format
}

// NewWriter creates a new output writer with the given format. A nil
// destination writes to stdout.
func NewWriter(dest io.Writer, format Format) *Writer {
	if dest == nil {
		dest = os.Stdout
	}
	return &Writer{
		dest:   dest,
		format: format,
	}
}

// Format returns the writer's output format.
func (w *Writer) Format() Format { return w.format }

// Dest returns the underlying destination.
func (w *Writer) Dest() io.Writer { return w.dest }

// WriteJSON writes v inside the standard envelope.
func (w *Writer) WriteJSON(cmd string, v interface{}, warnings ...string) error {
	return WriteJSON(w.dest, cmd, v, warnings...)
}

// WriteText writes plain text.
func (w *Writer) WriteText(s string) error {
	_, err := fmt.Fprint(w.dest, s)
	return err
}

// WriteLn writes a line of text.
func (w *Writer) WriteLn(s string) error {
	_, err := fmt.Fprintln(w.dest, s)
	return err
}

// IsStdout reports whether output goes to the process's stdout.
func (w *Writer) IsStdout() bool { return w.dest == os.Stdout }

// WriteWarning writes an advisory message to stderr.
func WriteWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
