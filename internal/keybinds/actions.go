package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	// Contexts define where keybindings are active
	ContextGlobal    Context = "global"     // Every screen, outside text entry
	ContextMenu      Context = "menu"       // Section menu at "/"
	ContextList      Context = "list"       // Collection list
	ContextDetail    Context = "detail"     // Single record
	ContextForm      Context = "form"       // Edit screen before the editor has focus
	ContextTextInput Context = "text_input" // Address bar and list filter
	ContextEditor    Context = "editor"     // JSON editor of the edit screen
	ContextConfirm   Context = "confirm"    // Delete confirmation
)

const (
	// Global actions
	ActionQuit        Action = "quit"         // Quit and save history
	ActionQuitForce   Action = "quit_force"   // ctrl+c, works in every mode
	ActionOpenAddress Action = "open_address" // Type a location
	ActionBack        Action = "back"         // Previous history entry
	ActionForward     Action = "forward"      // Next history entry
	ActionUp          Action = "up"           // Go to the parent location
	ActionOpenHelp    Action = "open_help"    // Help overlay
	ActionShowError   Action = "show_error"   // Full detail of the last error

	// Navigation actions
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"
	ActionOpen         Action = "open" // Open the selected entry

	// Record actions
	ActionNew    Action = "new" // Create a record in the listed collection
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionCopy   Action = "copy" // Copy the record as JSON
	ActionFilter Action = "filter"
	ActionReload Action = "reload"

	// Text entry and editor actions
	ActionSubmit Action = "submit"
	ActionCancel Action = "cancel"
	ActionSave   Action = "save"

	// Confirmation actions
	ActionConfirmYes Action = "confirm_yes"
	ActionConfirmNo  Action = "confirm_no"
)

// AllActions lists every action a key can be bound to
var AllActions = []Action{
	ActionQuit, ActionQuitForce, ActionOpenAddress, ActionBack, ActionForward, ActionUp,
	ActionOpenHelp, ActionShowError,
	ActionNavigateUp, ActionNavigateDown, ActionGoToTop, ActionGoToBottom, ActionOpen,
	ActionNew, ActionEdit, ActionDelete, ActionCopy, ActionFilter, ActionReload,
	ActionSubmit, ActionCancel, ActionSave,
	ActionConfirmYes, ActionConfirmNo,
}

// AllContexts lists the contexts in the order they are documented
var AllContexts = []Context{
	ContextGlobal, ContextMenu, ContextList, ContextDetail, ContextForm,
	ContextTextInput, ContextEditor, ContextConfirm,
}

// IsKnown reports whether a is one of AllActions
func (a Action) IsKnown() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// IsKnown reports whether c is one of AllContexts
func (c Context) IsKnown() bool {
	for _, known := range AllContexts {
		if c == known {
			return true
		}
	}
	return false
}
