package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerMenuBindings(r)
	registerListBindings(r)
	registerDetailBindings(r)
	registerFormBindings(r)
	registerTextInputBindings(r)
	registerEditorBindings(r)
	registerConfirmBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available on every screen
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "q", ActionQuit)
	r.Register(ContextGlobal, ":", ActionOpenAddress)
	r.RegisterMultiple(ContextGlobal, []string{"[", "alt+left"}, ActionBack)
	r.RegisterMultiple(ContextGlobal, []string{"]", "alt+right"}, ActionForward)
	r.RegisterMultiple(ContextGlobal, []string{"esc", "backspace"}, ActionUp)
	r.Register(ContextGlobal, "?", ActionOpenHelp)
	r.Register(ContextGlobal, "E", ActionShowError)
}

func registerMenuBindings(r *Registry) {
	r.RegisterMultiple(ContextMenu, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextMenu, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextMenu, "enter", ActionOpen)
}

func registerListBindings(r *Registry) {
	r.RegisterMultiple(ContextList, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextList, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextList, []string{"g", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextList, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextList, "enter", ActionOpen)
	r.Register(ContextList, "n", ActionNew)
	r.Register(ContextList, "e", ActionEdit)
	r.Register(ContextList, "d", ActionDelete)
	r.Register(ContextList, "/", ActionFilter)
	r.Register(ContextList, "r", ActionReload)
}

func registerDetailBindings(r *Registry) {
	r.Register(ContextDetail, "e", ActionEdit)
	r.Register(ContextDetail, "y", ActionCopy)
	r.Register(ContextDetail, "d", ActionDelete)
	r.Register(ContextDetail, "r", ActionReload)
}

// registerFormBindings covers the edit screen while its record is loading
func registerFormBindings(r *Registry) {
	r.Register(ContextForm, "r", ActionReload)
}

// registerTextInputBindings covers the address bar and the list filter.
// Every other key is typed into the input.
func registerTextInputBindings(r *Registry) {
	r.Register(ContextTextInput, "enter", ActionSubmit)
	r.Register(ContextTextInput, "esc", ActionCancel)
	r.Register(ContextTextInput, "ctrl+c", ActionQuitForce)
}

func registerEditorBindings(r *Registry) {
	r.Register(ContextEditor, "ctrl+s", ActionSave)
	r.Register(ContextEditor, "esc", ActionCancel)
	r.Register(ContextEditor, "ctrl+c", ActionQuitForce)
}

func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"y", "Y"}, ActionConfirmYes)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc"}, ActionConfirmNo)
	r.Register(ContextConfirm, "ctrl+c", ActionQuitForce)
}
