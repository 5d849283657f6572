package cli

import (
	"fmt"
	"io"

	"github.com/studiowebux/taskdeck/internal/events"
)

var operationColors = map[string]string{
	events.OpCreate: colorGreen,
	events.OpUpdate: colorYellow,
	events.OpRemove: colorRed,
}

// PrintEvent writes one feed event per line, or as a compact document when
// format is set
func PrintEvent(w io.Writer, e events.Event, format string) error {
	if format != "" {
		// One document per line so the output can be piped
		if format == FormatJSON {
			format = FormatBody
		}
		out, err := FormatResult(e, format)
		if err != nil {
			return err
		}
		if format == FormatYAML {
			out = "---\n" + out
		}
		_, err = fmt.Fprint(w, out)
		return err
	}

	_, err := fmt.Fprintf(w, "%s  %s%-6s%s %s/%d\n",
		e.At.Local().Format("15:04:05"), operationColors[e.Operation], e.Operation, colorReset, e.Collection, e.ID)
	return err
}
