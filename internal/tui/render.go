package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/taskdeck/internal/keybinds"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// renderMain renders the header, the current screen and the status bar
func (m *Model) renderMain() string {
	bodyWidth := max(ModalMinWidth, m.width-ModalWidthMargin)
	bodyHeight := max(1, m.height-ContentOffsetStandard)

	// Detail and edit targets are modals over their section
	border := colorGray
	if _, modal := m.screen.(*detailScreen); modal {
		border = colorCyan
	}
	if _, modal := m.screen.(*formScreen); modal {
		border = colorYellow
	}

	body := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(m.width - 2).
		Height(bodyHeight).
		Render(m.screen.render(m, bodyWidth, bodyHeight))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusBar(),
		styleSubtle.Render(truncate(m.renderFooter(), m.width)),
	)
}

// actionLabels names actions in the footer and the help overlay
var actionLabels = map[keybinds.Action]string{
	keybinds.ActionQuit:         "quit",
	keybinds.ActionOpenAddress:  "goto",
	keybinds.ActionBack:         "back",
	keybinds.ActionForward:      "forward",
	keybinds.ActionUp:           "close",
	keybinds.ActionOpenHelp:     "help",
	keybinds.ActionShowError:    "error detail",
	keybinds.ActionNavigateUp:   "up",
	keybinds.ActionNavigateDown: "move",
	keybinds.ActionGoToTop:      "top",
	keybinds.ActionGoToBottom:   "bottom",
	keybinds.ActionOpen:         "open",
	keybinds.ActionNew:          "new",
	keybinds.ActionEdit:         "edit",
	keybinds.ActionDelete:       "delete",
	keybinds.ActionCopy:         "copy JSON",
	keybinds.ActionFilter:       "filter",
	keybinds.ActionReload:       "reload",
	keybinds.ActionSubmit:       "go",
	keybinds.ActionCancel:       "cancel",
	keybinds.ActionSave:         "save",
}

// renderFooter lists the screen actions with their current keys
func (m *Model) renderFooter() string {
	context := m.keyContext()
	actions := append(m.screen.help(), keybinds.ActionOpenAddress, keybinds.ActionBack, keybinds.ActionOpenHelp)

	var parts []string
	for _, action := range actions {
		keys := m.keys.GetBinding(context, action)
		if len(keys) == 0 {
			continue
		}
		parts = append(parts, keys[0]+": "+actionLabels[action])
	}
	return strings.Join(parts, " • ")
}

// renderHeader shows the location with history hints
func (m *Model) renderHeader() string {
	back, forward := " ", " "
	if m.nav.CanGoBack() {
		back = "<"
	}
	if m.nav.CanGoForward() {
		forward = ">"
	}

	left := styleTitle.Render("taskdeck") + "  " + styleSubtle.Render(back+forward) + " " + m.state.FullPath
	right := styleSubtle.Render(string(m.state.Target()))
	if m.loading {
		right = styleWarning.Render("loading... ") + right
	}

	spacing := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", spacing) + right
}

func (m *Model) renderStatusBar() string {
	left := m.client.BaseURL()

	right := ""
	switch m.mode {
	case ModeAddress:
		right = m.address.View()
	case ModeFilter:
		right = m.filter.View()
	case ModeDeleteConfirm:
		right = styleWarning.Render(fmt.Sprintf("Delete %s/%s? (y/n)", m.section(), m.pendingDelete))
	default:
		if m.errorMsg != "" {
			right = styleError.Render(m.errorMsg)
			if m.fullErrorMsg != m.errorMsg {
				right += styleSubtle.Render(" (E for details)")
			}
		} else if m.statusMsg != "" {
			right = styleSuccess.Render(m.statusMsg)
		} else if v := m.filter.Value(); v != "" {
			right = styleSubtle.Render("filter: " + v)
		}
	}

	spacing := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", spacing) + right
}

func (m *Model) renderHelp() string {
	sections := []struct {
		title   string
		context keybinds.Context
		actions []keybinds.Action
	}{
		{"Navigation", keybinds.ContextGlobal, []keybinds.Action{
			keybinds.ActionOpenAddress, keybinds.ActionBack, keybinds.ActionForward,
			keybinds.ActionUp, keybinds.ActionOpenHelp, keybinds.ActionShowError, keybinds.ActionQuit,
		}},
		{"Lists", keybinds.ContextList, []keybinds.Action{
			keybinds.ActionNavigateUp, keybinds.ActionNavigateDown, keybinds.ActionGoToTop, keybinds.ActionGoToBottom,
			keybinds.ActionOpen, keybinds.ActionNew, keybinds.ActionEdit, keybinds.ActionDelete, keybinds.ActionFilter, keybinds.ActionReload,
		}},
		{"Records", keybinds.ContextDetail, []keybinds.Action{
			keybinds.ActionEdit, keybinds.ActionCopy, keybinds.ActionDelete, keybinds.ActionReload,
		}},
		{"Editor", keybinds.ContextEditor, []keybinds.Action{
			keybinds.ActionSave, keybinds.ActionCancel,
		}},
	}

	var sb strings.Builder
	sb.WriteString("taskdeck shell\n")
	for _, sec := range sections {
		sb.WriteString("\n" + sec.title + "\n")
		for _, action := range sec.actions {
			fmt.Fprintf(&sb, "  %-14s %s\n", m.keys.GetBindingString(sec.context, action), helpText[action])
		}
	}
	sb.WriteString("\nLocations that match no route open the main view.\n")
	sb.WriteString("Keys can be changed in " + keybinds.FileName + ".\n\n")
	sb.WriteString("Press any key to close")

	return m.renderModal("Help", sb.String(), colorCyan)
}

var helpText = map[keybinds.Action]string{
	keybinds.ActionOpenAddress:  "Go to a location (e.g. /habits/12/edit)",
	keybinds.ActionBack:         "Back through history",
	keybinds.ActionForward:      "Forward through history",
	keybinds.ActionUp:           "Go up one level",
	keybinds.ActionOpenHelp:     "This help",
	keybinds.ActionShowError:    "Full detail of the last error",
	keybinds.ActionQuit:         "Quit (history is saved)",
	keybinds.ActionNavigateUp:   "Move up",
	keybinds.ActionNavigateDown: "Move down",
	keybinds.ActionGoToTop:      "First record",
	keybinds.ActionGoToBottom:   "Last record",
	keybinds.ActionOpen:         "Open the record",
	keybinds.ActionNew:          "Create a record",
	keybinds.ActionEdit:         "Edit the record",
	keybinds.ActionDelete:       "Delete the record",
	keybinds.ActionFilter:       "Fuzzy filter",
	keybinds.ActionReload:       "Reload",
	keybinds.ActionCopy:         "Copy as JSON",
	keybinds.ActionSave:         "Save",
	keybinds.ActionCancel:       "Cancel",
}

func (m *Model) renderErrorDetail() string {
	return m.renderModal("Error", m.fullErrorMsg+"\n\nPress any key to close", colorRed)
}

func (m *Model) renderModal(title, content string, border lipgloss.AdaptiveColor) string {
	width := max(ModalMinWidth, m.width-ModalWidthMargin)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(width).
		Render(styleTitle.Render(title) + "\n\n" + content)

	return lipgloss.Place(m.width, m.height-ModalHeightMargin, lipgloss.Center, lipgloss.Center, box)
}
