package keybinds

import (
	"reflect"
	"testing"
)

func TestRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		context Context
		key     string
		want    Action
		found   bool
	}{
		{"list binding", ContextList, "d", ActionDelete, true},
		{"list creates", ContextList, "n", ActionNew, true},
		{"list falls back to global", ContextList, "q", ActionQuit, true},
		{"detail falls back to global", ContextDetail, "[", ActionBack, true},
		{"menu open", ContextMenu, "enter", ActionOpen, true},
		{"text input does not inherit global", ContextTextInput, "q", "", false},
		{"editor does not inherit global", ContextEditor, "[", "", false},
		{"editor saves", ContextEditor, "ctrl+s", ActionSave, true},
		{"confirm esc says no", ContextConfirm, "esc", ActionConfirmNo, true},
		{"unbound key", ContextList, "z", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := r.Match(tt.context, tt.key)
			if got != tt.want || found != tt.found {
				t.Errorf("Match(%s, %q) = (%q, %v), want (%q, %v)", tt.context, tt.key, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestRegistry_ContextOverridesGlobal(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextDetail, "q", ActionCopy)

	if got, _ := r.Match(ContextDetail, "q"); got != ActionCopy {
		t.Errorf("Match(detail, q) = %q, want %q", got, ActionCopy)
	}
	if got, _ := r.Match(ContextList, "q"); got != ActionQuit {
		t.Errorf("Match(list, q) = %q, want %q", got, ActionQuit)
	}
}

func TestRegistry_GetBinding(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBinding(ContextList, ActionNavigateDown); !reflect.DeepEqual(got, []string{"j", "down"}) {
		t.Errorf("GetBinding(list, navigate_down) = %v", got)
	}
	// Global actions are found through the parent
	if got := r.GetBindingString(ContextDetail, ActionBack); got != "[, alt+left" {
		t.Errorf("GetBindingString(detail, back) = %q", got)
	}
	if got := r.GetBindingString(ContextMenu, ActionSave); got != "unbound" {
		t.Errorf("GetBindingString(menu, save) = %q, want unbound", got)
	}
}

func TestRegistry_ListBindings(t *testing.T) {
	r := NewDefaultRegistry()

	bindings := r.ListBindings(ContextForm)
	if len(bindings) == 0 || bindings[0].Context != ContextForm || bindings[0].Action != ActionReload {
		t.Fatalf("ListBindings(form) should start with the form bindings, got %+v", bindings)
	}
	sawGlobal := false
	for _, b := range bindings {
		if b.Context == ContextGlobal {
			sawGlobal = true
		}
	}
	if !sawGlobal {
		t.Error("ListBindings(form) should include inherited global bindings")
	}

	for _, b := range r.ListBindings(ContextEditor) {
		if b.Context != ContextEditor {
			t.Errorf("editor inherits %+v", b)
		}
	}
}

func TestRegistry_CloneAndUnbind(t *testing.T) {
	r := NewDefaultRegistry()
	clone := r.Clone()
	clone.Unbind(ContextList, "d")

	if clone.HasBinding(ContextList, "d") {
		t.Error("clone still binds d after Unbind")
	}
	if !r.HasBinding(ContextList, "d") {
		t.Error("Unbind on the clone changed the original")
	}
}
