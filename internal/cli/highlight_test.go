package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		format string
		input  string
		token  string
	}{
		{FormatJSON, "{\n  \"title\": \"Run\"\n}\n", "title"},
		{FormatBody, `{"title":"Run"}` + "\n", "title"},
		{FormatYAML, "title: Run\n", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got := Highlight(tt.input, tt.format)
			if !strings.Contains(got, "\x1b[") {
				t.Errorf("Highlight() has no color: %q", got)
			}
			if !strings.Contains(got, tt.token) {
				t.Errorf("Highlight() lost %q: %q", tt.token, got)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}
