package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
)

const (
	// QueryShellTimeout is the maximum time allowed for query shell command execution
	QueryShellTimeout = 30 * time.Second
)

var (
	// Shell command pattern: $(command)
	shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)
)

// Apply applies filter and query expressions to a decoded gateway result.
// Filter narrows results (e.g., [?done==`false`])
// Query transforms/selects fields (e.g., [].title)
// If query is $(...), it's executed with sh and the JSON result piped to stdin.
// Command output that parses as JSON is decoded; anything else is returned as a string.
func Apply(ctx context.Context, data any, filter string, query string) (any, error) {
	result := data

	if filter != "" {
		filtered, err := Search(result, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to apply filter: %w", err)
		}
		result = filtered
	}

	if query != "" {
		if matches := shellPattern.FindStringSubmatch(query); len(matches) > 1 {
			queried, err := executeShellCommand(ctx, result, matches[1])
			if err != nil {
				return nil, fmt.Errorf("failed to execute query shell command: %w", err)
			}
			result = queried
		} else {
			queried, err := Search(result, query)
			if err != nil {
				return nil, fmt.Errorf("failed to apply query: %w", err)
			}
			result = queried
		}
	}

	return result, nil
}

// Search applies one JMESPath expression to decoded JSON
func Search(data any, expression string) (any, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}
	return result, nil
}

// executeShellCommand runs command with the JSON form of data on stdin
func executeShellCommand(ctx context.Context, data any, command string) (any, error) {
	input, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := err.Error()
		if stderr.Len() > 0 {
			errMsg = strings.TrimSpace(stderr.String())
		}
		return nil, fmt.Errorf("command '%s' failed: %s", command, errMsg)
	}

	out := strings.TrimSpace(stdout.String())
	var decoded any
	if err := json.Unmarshal([]byte(out), &decoded); err == nil {
		return decoded, nil
	}
	return out, nil
}

// IsValidJMESPath checks if an expression is valid JMESPath syntax
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

// IsShellCommand checks if a query is a shell command (starts with $(...))
func IsShellCommand(query string) bool {
	return shellPattern.MatchString(query)
}
