package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/taskdeck/internal/keybinds"
)

// keyContext returns the binding context of the active mode
func (m *Model) keyContext() keybinds.Context {
	switch m.mode {
	case ModeAddress, ModeFilter:
		return keybinds.ContextTextInput
	case ModeEdit:
		return keybinds.ContextEditor
	case ModeDeleteConfirm:
		return keybinds.ContextConfirm
	default:
		return m.screen.keyContext()
	}
}

// handleKeyPress dispatches a key to the handler of the active mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	action, bound := m.keys.Match(m.keyContext(), msg.String())
	if action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	switch m.mode {
	case ModeAddress:
		return m.handleAddressKeys(msg, action)
	case ModeFilter:
		return m.handleFilterKeys(msg, action)
	case ModeEdit:
		return m.handleEditKeys(msg, action)
	case ModeDeleteConfirm:
		return m.handleDeleteConfirmKeys(action)
	case ModeHelp, ModeErrorDetail:
		// Any key closes the overlay
		m.mode = ModeNormal
		return nil
	}

	if !bound {
		return nil
	}
	return m.handleNormalAction(action)
}

func (m *Model) handleNormalAction(action keybinds.Action) tea.Cmd {
	// The screen goes first so it can claim actions like open
	if cmd, handled := m.screen.handleAction(m, action); handled {
		return cmd
	}

	switch action {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionOpenAddress:
		m.mode = ModeAddress
		m.address.SetValue(m.state.FullPath)
		m.address.CursorEnd()
		m.address.Focus()
	case keybinds.ActionBack:
		return m.back()
	case keybinds.ActionForward:
		return m.forward()
	case keybinds.ActionUp:
		if parent := m.screen.parent(); parent != m.state.Path {
			return m.navigate(parent)
		}
	case keybinds.ActionOpenHelp:
		m.mode = ModeHelp
	case keybinds.ActionShowError:
		if m.fullErrorMsg != "" {
			m.mode = ModeErrorDetail
		}
	}
	return nil
}

// handleAddressKeys edits the location bar; submit navigates there
func (m *Model) handleAddressKeys(msg tea.KeyMsg, action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionCancel:
		m.mode = ModeNormal
		m.address.Blur()
		return nil
	case keybinds.ActionSubmit:
		location := strings.TrimSpace(m.address.Value())
		m.mode = ModeNormal
		m.address.Blur()
		if location == "" {
			return nil
		}
		return m.navigate(location)
	}

	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return cmd
}

// handleFilterKeys narrows the list while typing
func (m *Model) handleFilterKeys(msg tea.KeyMsg, action keybinds.Action) tea.Cmd {
	list, _ := m.screen.(*listScreen)

	switch action {
	case keybinds.ActionCancel:
		m.filter.Reset()
		m.filter.Blur()
		m.mode = ModeNormal
		if list != nil {
			list.applyFilter("")
		}
		return nil
	case keybinds.ActionSubmit:
		m.filter.Blur()
		m.mode = ModeNormal
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if list != nil {
		list.applyFilter(m.filter.Value())
	}
	return cmd
}

// handleEditKeys forwards keys to the editor except save and cancel
func (m *Model) handleEditKeys(msg tea.KeyMsg, action keybinds.Action) tea.Cmd {
	form, ok := m.screen.(*formScreen)
	if !ok {
		m.mode = ModeNormal
		return nil
	}

	switch action {
	case keybinds.ActionSave:
		return form.submit(m)
	case keybinds.ActionCancel:
		m.editor.Blur()
		m.mode = ModeNormal
		return m.navigate(form.parent())
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *Model) handleDeleteConfirmKeys(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionConfirmYes:
		return m.deleteRecord()
	case keybinds.ActionConfirmNo:
		m.pendingDelete = ""
		m.mode = ModeNormal
		return m.setStatusMessage("Delete cancelled")
	}
	return nil
}
