package cli

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
)

const (
	highlightFormatter = "terminal256"
	highlightStyle     = "monokai"
)

// Highlight colors formatted output for a terminal. Output that cannot be
// highlighted is returned unchanged.
func Highlight(output, format string) string {
	lexer := "json"
	if format == FormatYAML {
		lexer = "yaml"
	}

	var sb strings.Builder
	if err := quick.Highlight(&sb, output, lexer, highlightFormatter, highlightStyle); err != nil {
		return output
	}
	return sb.String()
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f any) bool {
	file, ok := f.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// isInteractive checks if r is a terminal (not piped)
func isInteractive(r io.Reader) bool {
	return isTerminal(r)
}
