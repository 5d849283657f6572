package cli

import (
	"fmt"
	"io"

	"github.com/studiowebux/taskdeck/internal/keybinds"
)

// keybindEntry is the json/yaml form of one binding
type keybindEntry struct {
	Context string `json:"context" yaml:"context"`
	Key     string `json:"key" yaml:"key"`
	Action  string `json:"action" yaml:"action"`
}

// PrintKeybinds writes the bindings of every context, then the validation
// problems of the registry. Inherited global bindings are listed once, under global.
func PrintKeybinds(w io.Writer, keys *keybinds.Registry, result *keybinds.ValidationResult, format string) error {
	var entries []keybindEntry
	for _, context := range keybinds.AllContexts {
		for _, b := range keys.ListBindings(context) {
			if b.Context != context {
				continue
			}
			entries = append(entries, keybindEntry{Context: string(b.Context), Key: b.Key, Action: string(b.Action)})
		}
	}

	if format != "" {
		out, err := FormatResult(entries, format)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	fmt.Fprintf(w, "%-12s %-12s %s\n", "CONTEXT", "KEY", "ACTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%-12s %-12s %s\n", e.Context, e.Key, e.Action)
	}

	if result != nil && (result.HasErrors() || result.HasWarnings()) {
		fmt.Fprintf(w, "\n%s%s%s\n", colorYellow, result.String(), colorReset)
	}
	return nil
}
