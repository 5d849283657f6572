package filter

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestApply(t *testing.T) {
	tasks := `[
		{"id": 1, "title": "Run", "done": true, "importance": 3},
		{"id": 2, "title": "Read", "done": false, "importance": 1},
		{"id": 3, "title": "Write", "done": false, "importance": 2}
	]`

	tests := []struct {
		name   string
		filter string
		query  string
		want   string
	}{
		{"no expressions", "", "", tasks},
		{"filter only", "[?done]", "", `[{"id": 1, "title": "Run", "done": true, "importance": 3}]`},
		{"query only", "", "[].title", `["Run", "Read", "Write"]`},
		{"filter then query", "[?!done]", "[].id", `[2, 3]`},
		{"no match", "[?importance > `5`]", "", `[]`},
		{"scalar", "", "length(@)", `3`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(context.Background(), decode(t, tasks), tt.filter, tt.query)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if want := decode(t, tt.want); !reflect.DeepEqual(got, want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestApply_InvalidExpression(t *testing.T) {
	if _, err := Apply(context.Background(), []any{}, "[?", ""); err == nil {
		t.Error("expected error for invalid filter")
	}
	if _, err := Apply(context.Background(), []any{}, "", "[?"); err == nil {
		t.Error("expected error for invalid query")
	}
}

func TestApply_ShellQuery(t *testing.T) {
	data := decode(t, `{"title": "Run"}`)

	got, err := Apply(context.Background(), data, "", "$(cat)")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Errorf("got %v, want input echoed back", got)
	}

	got, err = Apply(context.Background(), data, "", "$(echo plain text)")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got != "plain text" {
		t.Errorf("got %#v, want plain string", got)
	}

	if _, err := Apply(context.Background(), data, "", "$(exit 3)"); err == nil {
		t.Error("expected error for failing command")
	}
}

func TestIsShellCommand(t *testing.T) {
	tests := map[string]bool{
		"$(jq .)":  true,
		"[].title": false,
		"$(":       false,
		"":         false,
	}
	for query, want := range tests {
		if got := IsShellCommand(query); got != want {
			t.Errorf("IsShellCommand(%q) = %v, want %v", query, got, want)
		}
	}
}

func TestIsValidJMESPath(t *testing.T) {
	if !IsValidJMESPath("[?done].title") {
		t.Error("expected valid expression")
	}
	if IsValidJMESPath("[?") {
		t.Error("expected invalid expression")
	}
}
