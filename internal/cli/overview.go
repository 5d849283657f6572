package cli

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/taskdeck/internal/api"
)

// CollectionSummary counts the records of one collection
type CollectionSummary struct {
	Collection string `json:"collection" yaml:"collection"`
	Total      int    `json:"total" yaml:"total"`
	Done       int    `json:"done" yaml:"done"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Overview fetches every collection concurrently. A failing collection is
// reported in its summary; the other collections still complete.
func Overview(ctx context.Context, client *api.Client, collections []string) []CollectionSummary {
	summaries := make([]CollectionSummary, len(collections))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range collections {
		i, name := i, name
		g.Go(func() error {
			summaries[i] = summarize(ctx, client.Collection(name))
			return nil
		})
	}
	g.Wait()

	return summaries
}

func summarize(ctx context.Context, client *api.Client) CollectionSummary {
	summary := CollectionSummary{Collection: client.Name()}

	result, err := client.List(ctx)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}

	records, ok := result.([]any)
	if !ok {
		summary.Error = "unexpected response shape"
		return summary
	}

	summary.Total = len(records)
	for _, r := range records {
		if obj, ok := r.(map[string]any); ok && obj["done"] == true {
			summary.Done++
		}
	}
	return summary
}

// Failed reports whether any collection could not be fetched
func Failed(summaries []CollectionSummary) bool {
	for _, s := range summaries {
		if s.Error != "" {
			return true
		}
	}
	return false
}

// PrintOverview writes summaries as a table, or in format when it is json/yaml
func PrintOverview(w io.Writer, summaries []CollectionSummary, format string) error {
	if format == FormatJSON || format == FormatYAML || format == FormatBody {
		out, err := FormatResult(summaries, format)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	fmt.Fprintf(w, "%-12s %6s %6s\n", "COLLECTION", "TOTAL", "DONE")
	for _, s := range summaries {
		if s.Error != "" {
			fmt.Fprintf(w, "%-12s %s%s%s\n", s.Collection, colorRed, s.Error, colorReset)
			continue
		}
		fmt.Fprintf(w, "%-12s %6d %6d\n", s.Collection, s.Total, s.Done)
	}
	return nil
}
