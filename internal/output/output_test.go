package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "chart", map[string]int{"labels": 2}, "note"); err != nil {
		t.Fatal(err)
	}

	var res JSONResult
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.OK || res.Command != "chart" || res.Version == "" {
		t.Errorf("envelope = %+v", res)
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "note" {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONError(&buf, "table", errors.New("sheet missing"), ExitUserError); err != nil {
		t.Fatal(err)
	}

	var res JSONResult
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.OK || res.Error != "sheet missing" || res.Code != ExitUserError {
		t.Errorf("envelope = %+v", res)
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"": FormatText, "JSON": FormatJSON, "csv": FormatCSV, "html": FormatHTML} {
		got, err := ParseFormat(name)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatCSV)
	w.WriteText("a,b")
	w.WriteLn("")
	if buf.String() != "a,b\n" {
		t.Errorf("got %q", buf.String())
	}
	if w.IsStdout() || w.Format() != FormatCSV {
		t.Error("unexpected writer state")
	}
}
