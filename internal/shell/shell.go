// Package shell provides the interactive sheetviz REPL.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/mattn/go-shellwords"

	"github.com/klytics/sheetviz/internal/formats/xlsx"
)

// CommandRunner executes a sheetviz command and returns its output.
// This is set by the cmd/shell package to avoid import cycles.
type CommandRunner func(ctx context.Context, args []string, stdout, stderr io.Writer) error

// DefaultRunner is the command runner used by the shell session.
var DefaultRunner CommandRunner

// Session manages an interactive sheetviz shell session.
type Session struct {
	// DefaultFile is inserted into workbook commands that name no file.
	DefaultFile string
	// DefaultSheet is passed as --sheet to sheet commands that name none.
	DefaultSheet   string
	LastOutput     string
	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time

	// KnownCommands is the list of top-level commands for completion.
	KnownCommands []string
}

// fileCommands take a workbook path as their first argument.
var fileCommands = map[string]bool{
	"sheets": true, "table": true, "months": true, "chart": true, "map": true,
}

// sheetCommands accept --sheet.
var sheetCommands = map[string]bool{
	"table": true, "months": true, "chart": true, "map": true,
}

// NewSession creates a new interactive session that keeps its history in
// historyFile.
func NewSession(historyFile string) (*Session, error) {
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0700); err != nil {
			return nil, fmt.Errorf("could not create history directory: %w", err)
		}
	}

	return &Session{
		HistoryFile: historyFile,
		StartTime:   time.Now(),
		KnownCommands: []string{
			"sheets", "table", "months", "chart", "map",
			"watch", "serve", "config", "doctor", "completion", "version",
			"help", "exit", "quit", "history", "set", "unset",
		},
	}, nil
}

// Run starts the REPL loop. Blocks until 'exit' or Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	if DefaultRunner == nil {
		return fmt.Errorf("shell runner not configured")
	}

	completer := readline.NewPrefixCompleter(s.buildCompleter()...)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sheetviz> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Printf("sheetviz — Interactive Shell\n")
	fmt.Println("Type 'help' for commands, 'exit' to quit.")
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		s.CommandHistory = append(s.CommandHistory, line)

		switch {
		case line == "exit" || line == "quit":
			elapsed := time.Since(s.StartTime)
			fmt.Printf("\nSession ended. %d commands run in %s.\n",
				len(s.CommandHistory)-1, formatDuration(elapsed))
			return nil
		case line == "help":
			s.printHelp()
		case line == "history":
			for i, cmd := range s.CommandHistory {
				fmt.Printf("  %d  %s\n", i+1, cmd)
			}
		case strings.HasPrefix(line, "set ") || strings.HasPrefix(line, "unset "):
			msg, err := s.Set(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			} else {
				fmt.Println(msg)
			}
		default:
			output, err := s.Eval(ctx, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			} else if output != "" {
				fmt.Print(output)
				if !strings.HasSuffix(output, "\n") {
					fmt.Println()
				}
			}
		}
	}

	return nil
}

// Set applies a "set file|sheet <value>" or "unset file|sheet" line and
// returns a confirmation message.
func (s *Session) Set(line string) (string, error) {
	fields, err := SplitArgs(line)
	if err != nil {
		return "", err
	}
	if len(fields) == 2 && fields[0] == "unset" {
		switch fields[1] {
		case "file":
			s.DefaultFile = ""
			return "Default file cleared", nil
		case "sheet":
			s.DefaultSheet = ""
			return "Default sheet cleared", nil
		}
	}
	if len(fields) == 3 && fields[0] == "set" {
		switch fields[1] {
		case "file":
			if !xlsx.Supported(fields[2]) {
				return "", fmt.Errorf("%q is not a spreadsheet — expected one of %s", fields[2], strings.Join(xlsx.Extensions, ", "))
			}
			s.DefaultFile = fields[2]
			return fmt.Sprintf("Default file: %s", s.DefaultFile), nil
		case "sheet":
			s.DefaultSheet = fields[2]
			return fmt.Sprintf("Default sheet: %s", s.DefaultSheet), nil
		}
	}
	return "", fmt.Errorf("usage: set file <path> | set sheet <name> | unset file|sheet")
}

// Expand fills in the session's default file and sheet for commands that
// need them and did not name their own.
func (s *Session) Expand(args []string) []string {
	if len(args) == 0 || !fileCommands[args[0]] {
		return args
	}
	out := append([]string(nil), args...)

	if s.DefaultFile != "" && !hasFileArg(out[1:]) {
		out = append([]string{out[0], s.DefaultFile}, out[1:]...)
	}
	if s.DefaultSheet != "" && sheetCommands[out[0]] && !hasFlag(out, "--sheet") {
		out = append(out, "--sheet", s.DefaultSheet)
	}
	return out
}

func hasFileArg(args []string) bool {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") && xlsx.Supported(a) {
			return true
		}
	}
	return false
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			return true
		}
	}
	return false
}

// Eval runs a single command string and returns its output.
func (s *Session) Eval(ctx context.Context, command string) (string, error) {
	if DefaultRunner == nil {
		return "", fmt.Errorf("shell runner not configured")
	}

	fields, err := SplitArgs(command)
	if err != nil {
		return "", err
	}
	args := s.Expand(fields)
	if len(args) == 0 {
		return "", nil
	}

	var stdout, stderr bytes.Buffer
	err = DefaultRunner(ctx, args, &stdout, &stderr)

	output := stdout.String()
	s.LastOutput = output

	if errOut := stderr.String(); errOut != "" && err != nil {
		return output, fmt.Errorf("%s", strings.TrimSpace(errOut))
	}

	return output, err
}

// SplitArgs splits a command line the way a POSIX shell would, keeping
// quoted runs together so titles with spaces survive. Unterminated quotes
// and shell operators such as | or > are errors.
func SplitArgs(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("could not parse %q — check for an unterminated quote", line)
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("shell operators are not supported: %q", line[p.Position:])
	}
	return args, nil
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return s.KnownCommands
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return s.KnownCommands
	}

	// Complete top-level command
	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		prefix := parts[0]
		var matches []string
		for _, cmd := range s.KnownCommands {
			if strings.HasPrefix(cmd, prefix) {
				matches = append(matches, cmd)
			}
		}
		sort.Strings(matches)
		return matches
	}

	last := parts[len(parts)-1]
	if strings.HasPrefix(last, "-") {
		var matches []string
		for _, f := range flagsFor(parts[0]) {
			if strings.HasPrefix(f, last) {
				matches = append(matches, f)
			}
		}
		return matches
	}

	if len(parts) == 2 {
		var matches []string
		for _, sub := range subcommandsFor(parts[0]) {
			if strings.HasPrefix(sub, parts[1]) {
				matches = append(matches, sub)
			}
		}
		return matches
	}

	return nil
}

func subcommandsFor(parent string) []string {
	subs := map[string][]string{
		"watch":  {"start", "stop", "status"},
		"chart":  {"presets"},
		"config": {"show", "get", "set", "path", "reset", "validate", "env"},
		"set":    {"file", "sheet"},
		"unset":  {"file", "sheet"},
	}
	return subs[parent]
}

func flagsFor(cmd string) []string {
	common := []string{"--json", "--verbose", "--help"}
	flags := map[string][]string{
		"table":  {"--sheet", "--csv", "--html", "--no-pager"},
		"months": {"--sheet", "--month-column"},
		"chart": {
			"--sheet", "--label", "--values", "--month-column", "--month", "--sort",
			"--type", "--palette", "--title", "--x-title", "--y-title",
			"--png", "--html", "--preset", "--save-preset", "--width", "--height",
		},
		"serve": {"--addr", "--max-upload-mb"},
		"watch": {
			"--sheet", "--label", "--values", "--month-column", "--month", "--sort",
			"--type", "--palette", "--preset", "--png", "--html", "--debounce",
		},
		"map": {"--sheet", "--lat", "--lon", "--name", "--color", "--icon", "--search", "--geojson", "--html"},
	}
	return append(flags[cmd], common...)
}

func (s *Session) printHelp() {
	fmt.Println("Available commands:")
	fmt.Println()
	fmt.Println("  Workbooks:  sheets, table, months")
	fmt.Println("  Charts:     chart, map")
	fmt.Println("  Services:   watch, serve")
	fmt.Println("  System:     config, doctor, version, completion")
	fmt.Println()
	fmt.Println("Shell commands:")
	fmt.Println("  help              — show this help")
	fmt.Println("  history           — show command history")
	fmt.Println("  set file <path>   — use this workbook when a command names none")
	fmt.Println("  set sheet <name>  — use this sheet when a command names none")
	fmt.Println("  unset file|sheet  — clear a default")
	fmt.Println("  exit              — exit the shell")
	if s.DefaultFile != "" || s.DefaultSheet != "" {
		fmt.Println()
		fmt.Printf("Defaults: file=%q sheet=%q\n", s.DefaultFile, s.DefaultSheet)
	}
}

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.KnownCommands {
		var children []readline.PrefixCompleterInterface
		for _, sub := range subcommandsFor(cmd) {
			children = append(children, readline.PcItem(sub))
		}
		if flags := flagsFor(cmd); len(flags) > len(flagsFor("")) {
			for _, f := range flags {
				children = append(children, readline.PcItem(f))
			}
		}
		items = append(items, readline.PcItem(cmd, children...))
	}
	return items
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
