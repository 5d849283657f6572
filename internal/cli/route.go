package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/studiowebux/taskdeck/internal/router"
)

// PrintRoutes resolves each location and prints the navigation state
func PrintRoutes(w io.Writer, r *router.Router, locations []string, format string) error {
	states := make([]router.State, 0, len(locations))
	for _, loc := range locations {
		states = append(states, r.Resolve(loc))
	}

	if format == FormatJSON || format == FormatYAML || format == FormatBody {
		out, err := FormatResult(states, format)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	for i, state := range states {
		fmt.Fprintln(w, DescribeState(locations[i], state))
	}
	return nil
}

// DescribeState renders one resolution on a single line:
//
//	/habits/12 -> HabitDetailModal id=12
//	/nope -> MainView (redirected to /)
func DescribeState(location string, state router.State) string {
	var sb strings.Builder
	sb.WriteString(location)
	sb.WriteString(" -> ")
	sb.WriteString(string(state.Target()))

	if props := state.Props(); len(props) > 0 {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%s", k, props[k]))
		}
	}

	if state.Redirected() {
		sb.WriteString(fmt.Sprintf(" (redirected to %s)", state.FullPath))
	}
	return sb.String()
}
