package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"TEXT", FormatText, false},
		{"Json", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"yaml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	payload := map[string]any{"name": "example", "count": 3}

	if err := WriteJSON(&buf, payload); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if decoded["name"] != "example" {
		t.Errorf("name = %v, want example", decoded["name"])
	}

	// Pretty-printed: the payload spans multiple lines
	if !bytes.Contains(buf.Bytes(), []byte("\n  ")) {
		t.Error("output not indented")
	}
}

func TestWriteJSONNoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]string{"url": "https://example.social?a=1&b=2"}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("&b=2")) {
		t.Error("ampersand escaped in JSON output")
	}
}

func TestDestinationStdout(t *testing.T) {
	w, closer, err := Destination("")
	if err != nil {
		t.Fatalf("Destination(\"\") error: %v", err)
	}
	if w != os.Stdout {
		t.Error("empty path should write to stdout")
	}
	if err := closer(); err != nil {
		t.Errorf("stdout closer error: %v", err)
	}
}

func TestDestinationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	w, closer, err := Destination(path)
	if err != nil {
		t.Fatalf("Destination(%q) error: %v", path, err)
	}

	if err := WriteString(w, "hello\n"); err != nil {
		t.Fatalf("WriteString error: %v", err)
	}
	if err := closer(); err != nil {
		t.Fatalf("closer error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("file contents = %q, want %q", data, "hello\n")
	}
}

func TestDestinationBadPath(t *testing.T) {
	if _, _, err := Destination(filepath.Join(t.TempDir(), "missing", "report.txt")); err == nil {
		t.Error("expected error for unwritable path")
	}
}
