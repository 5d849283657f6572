package keybinds

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Type: "conflict", Context: ContextList, Key: "x", Message: "bound to both delete and edit"}
	want := "[conflict] x in context 'list': bound to both delete and edit"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationResult_String(t *testing.T) {
	tests := []struct {
		name   string
		result *ValidationResult
		want   []string
	}{
		{"empty", &ValidationResult{}, []string{"No issues found"}},
		{
			"errors and warnings",
			&ValidationResult{
				Errors:   []ValidationError{{Type: "invalid", Context: ContextList, Key: "l", Message: "unknown action"}},
				Warnings: []ValidationError{{Type: "warning", Context: ContextDetail, Key: "q", Message: "shadows"}},
			},
			[]string{"Errors (1):", "Warnings (1):", "unknown action", "shadows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.result.String()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("String() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestValidateRegistry_Defaults(t *testing.T) {
	result := NewValidator().ValidateRegistry(NewDefaultRegistry())
	if result.HasErrors() || result.HasWarnings() {
		t.Errorf("default bindings should be clean:\n%s", result)
	}
}

func TestValidateRegistry_Warnings(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextDetail, "q", ActionCopy)
	r.Register(ContextEditor, "ctrl+c", ActionSave)

	result := NewValidator().ValidateRegistry(r)
	if result.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", result)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("warnings = %+v, want shadowing and reserved key", result.Warnings)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
		wantWarn  bool
	}{
		{"empty", &Config{}, false, false},
		{"rebind", &Config{List: map[string]string{"delete": "x"}}, false, false},
		{"unknown action", &Config{Global: map[string]string{"explode": "x"}}, true, false},
		{"conflict", &Config{Detail: map[string]string{"edit": "x", "copy": "x"}}, true, false},
		{"shadow global", &Config{Detail: map[string]string{"copy": "q"}}, false, true},
		{"reserved", &Config{Editor: map[string]string{"cancel": "esc,ctrl+c"}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewValidator().ValidateConfig(tt.config)
			if result.HasErrors() != tt.wantError {
				t.Errorf("HasErrors() = %v, want %v\n%s", result.HasErrors(), tt.wantError, result)
			}
			if result.HasWarnings() != tt.wantWarn {
				t.Errorf("HasWarnings() = %v, want %v\n%s", result.HasWarnings(), tt.wantWarn, result)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"a", "ctrl+s", "alt+left", "?"} {
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) error = %v", key, err)
		}
	}
	for _, key := range []string{"", "ctrl+", "shift+"} {
		if err := ValidateKey(key); err == nil {
			t.Errorf("ValidateKey(%q) should fail", key)
		}
	}
}
