package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/studiowebux/taskdeck/internal/api"
	"github.com/studiowebux/taskdeck/internal/events"
	"github.com/studiowebux/taskdeck/internal/router"
)

// setState swaps the screen for the one the state's route target renders.
// Pending results of the previous screen are dropped through seq.
func (m *Model) setState(state router.State) {
	m.state = state
	m.seq++
	m.mode = ModeNormal
	m.pendingDelete = ""
	m.loading = false
	m.filter.Reset()
	m.filter.Blur()
	m.address.Blur()
	m.editor.Blur()

	s, err := m.registry.Instantiate(state)
	if err != nil {
		// Every target of the default table is registered; this only trips on a new route
		m.logger.Error("no screen for route", zap.String("target", string(state.Target())), zap.Error(err))
		s = &menuScreen{}
	}
	m.screen = s

	m.logger.Debug("navigated",
		zap.String("location", state.FullPath),
		zap.String("target", string(state.Target())),
		zap.String("redirected_from", state.RedirectedFrom))
}

// enter shows a state the navigator has already moved to
func (m *Model) enter(state router.State) tea.Cmd {
	m.setState(state)
	cmds := []tea.Cmd{m.load()}
	if state.Redirected() {
		cmds = append(cmds, m.setStatusMessage(fmt.Sprintf("%s not found, showing %s", state.RedirectedFrom, state.FullPath)))
	}
	return tea.Batch(cmds...)
}

// navigate pushes location onto the history and shows it.
// Pushing the location on screen reloads it.
func (m *Model) navigate(location string) tea.Cmd {
	return m.enter(m.nav.Push(location))
}

func (m *Model) back() tea.Cmd {
	state, ok := m.nav.Back()
	if !ok {
		return m.setStatusMessage("Already at the oldest location")
	}
	return m.enter(state)
}

func (m *Model) forward() tea.Cmd {
	state, ok := m.nav.Forward()
	if !ok {
		return m.setStatusMessage("Already at the newest location")
	}
	return m.enter(state)
}

// load fetches whatever the current screen shows
func (m *Model) load() tea.Cmd {
	cmd := m.screen.load(m)
	m.loading = cmd != nil
	if cmd != nil {
		m.errorMsg = ""
		m.fullErrorMsg = ""
	}
	return cmd
}

// startCreate opens the editor on an empty record of section. The location
// stays on the list, so cancel and up lead back to it.
func (m *Model) startCreate(section string) tea.Cmd {
	// Results still pending for the list no longer have a screen
	m.seq++
	m.loading = false
	m.filter.Reset()
	m.filter.Blur()

	form := &formScreen{section: section, creating: true}
	form.setRecord(newTaskTemplate())
	m.screen = form

	m.editor.SetValue(form.draft)
	m.editor.Focus()
	m.mode = ModeEdit
	m.logger.Debug("creating record", zap.String("collection", section))
	return nil
}

// deleteRecord removes the pending record of the current section
func (m *Model) deleteRecord() tea.Cmd {
	id := m.pendingDelete
	m.pendingDelete = ""
	m.mode = ModeNormal

	section := m.section()
	if id == "" || section == "" {
		return nil
	}

	m.loading = true
	client := m.client.Collection(section)
	ctx, seq := m.ctx, m.seq
	return func() tea.Msg {
		_, err := client.Remove(ctx, id)
		return recordDeletedMsg{seq: seq, section: section, id: id, err: err}
	}
}

// section returns the collection the current screen works on
func (m *Model) section() string {
	switch s := m.screen.(type) {
	case *listScreen:
		return s.section
	case *detailScreen:
		return s.section
	case *formScreen:
		return s.section
	}
	return ""
}

// startFeed follows the backend change feed until the shell's context ends.
// Backends without a feed leave the shell as it was.
func (m *Model) startFeed() {
	if m.changes == nil {
		return
	}
	go func() {
		err := events.Watch(m.ctx, m.client.BaseURL(), func(e events.Event) {
			select {
			case m.changes <- e:
			case <-m.ctx.Done():
			}
		})
		if err != nil {
			m.logger.Info("change feed unavailable", zap.Error(err))
		}
	}()
}

// waitForChange delivers the next change of the feed as a changeMsg
func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		return changeMsg(<-ch)
	}
}

// applyChange refreshes the screen when another client changed what it shows
func (m *Model) applyChange(e events.Event) tea.Cmd {
	if e.Collection != m.section() {
		return nil
	}
	id := strconv.FormatInt(e.ID, 10)

	switch s := m.screen.(type) {
	case *listScreen:
		return m.load()
	case *detailScreen:
		if s.id != id {
			return nil
		}
		if e.Operation == events.OpRemove {
			return tea.Batch(
				m.setStatusMessage(fmt.Sprintf("%s/%s was deleted", e.Collection, id)),
				m.navigate(s.parent()),
			)
		}
		return m.load()
	case *formScreen:
		// Never overwrite the draft; a save of our own is in flight while loading
		if s.id == id && !m.loading {
			return m.setStatusMessage(fmt.Sprintf("%s/%s changed on the backend", e.Collection, id))
		}
	}
	return nil
}

func copyToClipboard(record any) tea.Cmd {
	return func() tea.Msg {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to encode record: %v", err))
		}
		if err := clipboard.WriteAll(string(data)); err != nil {
			return errorMsg(fmt.Sprintf("Failed to copy: %v", err))
		}
		return copiedMsg{}
	}
}

// describeError renders a gateway error with one line per validation issue
func describeError(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	var sb strings.Builder
	if apiErr.Status != 0 {
		sb.WriteString(fmt.Sprintf("%d %s", apiErr.Status, apiErr.Message))
	} else {
		sb.WriteString(apiErr.Error())
	}

	issues := apiErr.Issues()
	for _, issue := range issues {
		sb.WriteString(fmt.Sprintf("\n%s: %s", issueField(issue), issue.Msg))
	}
	if len(issues) == 0 {
		if detail, ok := apiErr.Detail.(string); ok && detail != "" {
			sb.WriteString("\n" + detail)
		}
	}
	return sb.String()
}

// issuesOf returns the validation issues carried by err
func issuesOf(err error) []api.ValidationIssue {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Issues()
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
