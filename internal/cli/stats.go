package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/studiowebux/taskdeck/internal/analytics"
	"github.com/studiowebux/taskdeck/internal/bookmarks"
)

// PrintStats writes gateway call statistics as a table, or in format when it is json/yaml
func PrintStats(w io.Writer, stats []analytics.Stats, format string) error {
	if format != "" {
		if stats == nil {
			stats = []analytics.Stats{}
		}
		out, err := FormatResult(stats, format)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	if len(stats) == 0 {
		fmt.Fprintln(w, "No calls recorded yet")
		return nil
	}

	fmt.Fprintf(w, "%-12s %-8s %6s %6s %6s %9s  %s\n", "COLLECTION", "OP", "CALLS", "OK", "ERR", "AVG MS", "STATUS")
	for _, s := range stats {
		errCount := fmt.Sprintf("%6d", s.ErrorCount)
		if s.ErrorCount > 0 {
			errCount = colorRed + errCount + colorReset
		}
		fmt.Fprintf(w, "%-12s %-8s %6d %6d %s %9.1f  %s\n",
			s.Collection, s.Operation, s.TotalCalls, s.SuccessCount, errCount, s.AvgDurationMs, statusBreakdown(s.StatusCodes))
	}
	return nil
}

// statusBreakdown renders {200: 3, 0: 1} as "200x3 neterr x1"
func statusBreakdown(codes map[int]int) string {
	keys := make([]int, 0, len(codes))
	for code := range codes {
		keys = append(keys, code)
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, code := range keys {
		label := fmt.Sprintf("%d", code)
		if code == 0 {
			label = "neterr"
		}
		parts = append(parts, fmt.Sprintf("%s%sx%d%s", getStatusColor(code), label, codes[code], colorReset))
	}
	return strings.Join(parts, " ")
}

// PrintBookmarks writes saved queries as a table, or in format when it is json/yaml
func PrintBookmarks(w io.Writer, list []bookmarks.Bookmark, format string) error {
	if format != "" {
		if list == nil {
			list = []bookmarks.Bookmark{}
		}
		out, err := FormatResult(list, format)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "No bookmarks saved")
		return nil
	}
	for _, b := range list {
		fmt.Fprintf(w, "%s%s%s  %s\n", bookmarks.Prefix, b.Name, strings.Repeat(" ", max(0, 20-len(b.Name))), b.Expression)
	}
	return nil
}
