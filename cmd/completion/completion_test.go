package completion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func run(t *testing.T, shell string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "sheetviz"}
	root.AddCommand(&cobra.Command{Use: "chart", Short: "Draw a chart"})
	root.AddCommand(&cobra.Command{Use: "map", Short: "Plot points"})
	root.AddCommand(NewCommand(root))

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"completion", shell})
	err := root.Execute()
	return buf.String(), err
}

func TestCompletionShells(t *testing.T) {
	cases := map[string]string{
		"bash":       "_sheetviz",
		"zsh":        "compdef",
		"fish":       "complete -c sheetviz",
		"powershell": "sheetviz",
	}
	for shell, want := range cases {
		out, err := run(t, shell)
		if err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		if !strings.Contains(out, want) {
			t.Errorf("%s completion should contain %q", shell, want)
		}
	}
}

func TestCompletionUnsupported(t *testing.T) {
	if _, err := run(t, "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
