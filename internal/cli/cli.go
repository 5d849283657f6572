package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/taskdeck/internal/api"
	"github.com/studiowebux/taskdeck/internal/filter"
)

// Actions map one-to-one onto gateway operations
const (
	ActionList   = "list"
	ActionGet    = "get"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatBody = "body" // compact JSON, for pipes
)

// RunOptions contains options for running one gateway call in CLI mode
type RunOptions struct {
	Action       string
	ID           string
	Body         string // JSON payload or @file
	OutputFormat string // json, yaml, body
	Filter       string // JMESPath filter expression
	Query        string // JMESPath query or $(bash command)
	SavePath     string
	Yes          bool // skip delete confirmation

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o *RunOptions) defaults() {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Run executes one gateway operation and prints its result.
// A gateway failure is returned as is so callers can render it with FormatError.
func Run(ctx context.Context, client *api.Client, opts RunOptions) error {
	opts.defaults()

	if needsID(opts.Action) && opts.ID == "" {
		id, err := selectID(ctx, client, opts)
		if err != nil {
			return err
		}
		opts.ID = id
	}

	var payload any
	if needsBody(opts.Action) {
		body, err := readBody(opts.Body, opts.Stdin)
		if err != nil {
			return err
		}
		payload = body
	}

	if opts.Action == ActionDelete && !opts.Yes {
		if !isInteractive(opts.Stdin) {
			return fmt.Errorf("refusing to delete %s/%s without confirmation (use --yes)", client.Name(), opts.ID)
		}
		ok, err := confirm(opts.Stdin, opts.Stderr, fmt.Sprintf("Delete %s/%s?", client.Name(), opts.ID))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("delete cancelled by user")
		}
	}

	result, err := Call(ctx, client, opts.Action, opts.ID, payload)
	if err != nil {
		return err
	}

	if opts.Filter != "" || opts.Query != "" {
		filtered, err := filter.Apply(ctx, result, opts.Filter, opts.Query)
		if err != nil {
			fmt.Fprintf(opts.Stderr, "Warning: filter/query error: %v\n", err)
		} else {
			result = filtered
		}
	}

	output, err := FormatResult(result, opts.OutputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(opts.Stderr, "Response saved to %s\n", opts.SavePath)
		return nil
	}

	if isTerminal(opts.Stdout) {
		output = Highlight(output, opts.OutputFormat)
	}
	fmt.Fprint(opts.Stdout, output)
	return nil
}

// Call dispatches action to the matching gateway operation
func Call(ctx context.Context, client *api.Client, action, id string, payload any) (any, error) {
	switch action {
	case ActionList:
		return client.List(ctx)
	case ActionGet:
		return client.Get(ctx, id)
	case ActionCreate:
		return client.Create(ctx, payload)
	case ActionUpdate:
		return client.Update(ctx, id, payload)
	case ActionDelete:
		return client.Remove(ctx, id)
	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}
}

func needsID(action string) bool {
	return action == ActionGet || action == ActionUpdate || action == ActionDelete
}

func needsBody(action string) bool {
	return action == ActionCreate || action == ActionUpdate
}

// readBody resolves the payload from --body, @file or piped stdin
func readBody(body string, stdin io.Reader) (any, error) {
	var data []byte
	switch {
	case strings.HasPrefix(body, "@"):
		b, err := os.ReadFile(body[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}
		data = b
	case body != "":
		data = []byte(body)
	case !isInteractive(stdin):
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read body from stdin: %w", err)
		}
		data = b
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("a JSON body is required (use --body, --body @file, or pipe it on stdin)")
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("body is not valid JSON: %w", err)
	}
	return payload, nil
}

// confirm asks a yes/no question on w and reads the answer from r
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// FormatResult renders a decoded gateway result. A nil result (empty body) prints nothing.
func FormatResult(result any, format string) (string, error) {
	if result == nil {
		return "", nil
	}

	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case FormatBody:
		data, err := json.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case FormatJSON, "":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	default:
		return "", fmt.Errorf("unsupported output format: %s (use json, yaml or body)", format)
	}
}

// FormatError renders an error for the terminal: status and message first,
// then one line per validation issue.
func FormatError(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return fmt.Sprintf("%sError: %v%s\n", colorRed, err, colorReset)
	}

	var sb strings.Builder
	status := "no response"
	if apiErr.Status != 0 {
		status = fmt.Sprintf("%d", apiErr.Status)
	}
	sb.WriteString(fmt.Sprintf("%s%s%s %s\n", getStatusColor(apiErr.Status), status, colorReset, apiErr.Message))

	if issues := apiErr.Issues(); len(issues) > 0 {
		for _, issue := range issues {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", strings.Join(issue.Loc, "."), issue.Msg))
		}
	} else if detail, ok := apiErr.Detail.(string); ok && detail != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", detail))
	}

	if cause := errors.Unwrap(apiErr); cause != nil {
		sb.WriteString(fmt.Sprintf("  cause: %v\n", cause))
	}
	return sb.String()
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func getStatusColor(status int) string {
	if status >= 200 && status < 300 {
		return colorGreen
	} else if status >= 400 || status == 0 {
		return colorRed
	}
	return colorYellow
}
