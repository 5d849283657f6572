package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/taskdeck/internal/api"
	"github.com/studiowebux/taskdeck/internal/keybinds"
	"github.com/studiowebux/taskdeck/internal/router"
)

// screen is the component a route target renders
type screen interface {
	title() string
	// parent is where esc leads
	parent() string
	load(m *Model) tea.Cmd
	// keyContext selects the bindings active on this screen
	keyContext() keybinds.Context
	handleAction(m *Model, action keybinds.Action) (tea.Cmd, bool)
	render(m *Model, width, height int) string
	setRecord(record any)
	// help lists the actions shown in the footer
	help() []keybinds.Action
}

// newScreenRegistry maps every route target to its screen
func newScreenRegistry() *router.Registry[screen] {
	r := router.NewRegistry[screen]()

	r.Register(router.TargetMain, func(router.Params) screen {
		return &menuScreen{}
	})

	for _, s := range []struct {
		section            string
		list, detail, form router.Target
	}{
		{api.CollectionHabits, router.TargetHabitTracker, router.TargetHabitDetail, router.TargetHabitForm},
		{api.CollectionSchedules, router.TargetSchedule, router.TargetScheduleDetail, router.TargetScheduleForm},
	} {
		section := s.section
		r.Register(s.list, func(router.Params) screen {
			return &listScreen{section: section}
		})
		r.Register(s.detail, func(p router.Params) screen {
			return &detailScreen{section: section, id: p["id"]}
		})
		r.Register(s.form, func(p router.Params) screen {
			return &formScreen{section: section, id: p["id"]}
		})
	}

	return r
}

// menuScreen lists the sections
type menuScreen struct {
	cursor int
}

var menuSections = []struct {
	section string
	label   string
}{
	{api.CollectionHabits, "Habit tracker"},
	{api.CollectionSchedules, "Schedule"},
}

func (s *menuScreen) title() string                { return "Menu" }
func (s *menuScreen) parent() string               { return router.Root }
func (s *menuScreen) load(*Model) tea.Cmd          { return nil }
func (s *menuScreen) setRecord(any)                {}
func (s *menuScreen) keyContext() keybinds.Context { return keybinds.ContextMenu }
func (s *menuScreen) help() []keybinds.Action {
	return []keybinds.Action{keybinds.ActionNavigateDown, keybinds.ActionOpen}
}

func (s *menuScreen) handleAction(m *Model, action keybinds.Action) (tea.Cmd, bool) {
	switch action {
	case keybinds.ActionNavigateUp:
		if s.cursor > 0 {
			s.cursor--
		}
	case keybinds.ActionNavigateDown:
		if s.cursor < len(menuSections)-1 {
			s.cursor++
		}
	case keybinds.ActionOpen:
		return m.navigate(router.CollectionPath(menuSections[s.cursor].section)), true
	default:
		return nil, false
	}
	return nil, true
}

func (s *menuScreen) render(_ *Model, width, _ int) string {
	lines := []string{styleTitle.Render("taskdeck"), ""}
	for i, sec := range menuSections {
		line := fmt.Sprintf("%-16s %s", sec.label, styleSubtle.Render(router.CollectionPath(sec.section)))
		if i == s.cursor {
			line = styleSelected.Width(width).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// listScreen shows every record of a collection
type listScreen struct {
	section string
	records []any
	visible []int // indices into records, in display order
	cursor  int
	offset  int
	loaded  bool
}

func (s *listScreen) title() string                { return sectionTitle(s.section) }
func (s *listScreen) parent() string               { return router.Root }
func (s *listScreen) setRecord(any)                {}
func (s *listScreen) keyContext() keybinds.Context { return keybinds.ContextList }
func (s *listScreen) help() []keybinds.Action {
	return []keybinds.Action{
		keybinds.ActionOpen, keybinds.ActionNew, keybinds.ActionEdit, keybinds.ActionDelete,
		keybinds.ActionFilter, keybinds.ActionReload,
	}
}

func (s *listScreen) load(m *Model) tea.Cmd {
	client := m.client.Collection(s.section)
	ctx, seq := m.ctx, m.seq
	return func() tea.Msg {
		result, err := client.List(ctx)
		if err != nil {
			return listLoadedMsg{seq: seq, err: err}
		}
		records, ok := result.([]any)
		if !ok {
			return listLoadedMsg{seq: seq, err: fmt.Errorf("expected a list from %s, got %T", s.section, result)}
		}
		return listLoadedMsg{seq: seq, records: records}
	}
}

func (s *listScreen) setRecords(records []any) {
	s.records = records
	s.loaded = true
}

// applyFilter narrows the visible records with a fuzzy match on their labels
func (s *listScreen) applyFilter(pattern string) {
	s.visible = s.visible[:0]
	if pattern == "" {
		for i := range s.records {
			s.visible = append(s.visible, i)
		}
	} else {
		labels := make([]string, len(s.records))
		for i, r := range s.records {
			labels[i] = recordLabel(r)
		}
		for _, match := range fuzzy.Find(pattern, labels) {
			s.visible = append(s.visible, match.Index)
		}
	}
	if s.cursor >= len(s.visible) {
		s.cursor = max(0, len(s.visible)-1)
	}
	s.offset = 0
}

// selectedID returns the id of the highlighted record
func (s *listScreen) selectedID() (string, bool) {
	if len(s.visible) == 0 {
		return "", false
	}
	id := recordID(s.records[s.visible[s.cursor]])
	return id, id != ""
}

func (s *listScreen) handleAction(m *Model, action keybinds.Action) (tea.Cmd, bool) {
	switch action {
	case keybinds.ActionNavigateUp:
		if s.cursor > 0 {
			s.cursor--
		}
	case keybinds.ActionNavigateDown:
		if s.cursor < len(s.visible)-1 {
			s.cursor++
		}
	case keybinds.ActionGoToTop:
		s.cursor = 0
	case keybinds.ActionGoToBottom:
		s.cursor = max(0, len(s.visible)-1)
	case keybinds.ActionOpen:
		if id, ok := s.selectedID(); ok {
			return m.navigate(router.DetailPath(s.section, id)), true
		}
	case keybinds.ActionNew:
		return m.startCreate(s.section), true
	case keybinds.ActionEdit:
		if id, ok := s.selectedID(); ok {
			return m.navigate(router.EditPath(s.section, id)), true
		}
	case keybinds.ActionDelete:
		if id, ok := s.selectedID(); ok {
			m.pendingDelete = id
			m.mode = ModeDeleteConfirm
		}
	case keybinds.ActionFilter:
		m.mode = ModeFilter
		m.filter.Focus()
	case keybinds.ActionReload:
		return m.load(), true
	default:
		return nil, false
	}
	return nil, true
}

func (s *listScreen) render(m *Model, width, height int) string {
	lines := []string{styleTitle.Render(s.title()), ""}

	switch {
	case !s.loaded && m.loading:
		lines = append(lines, styleSubtle.Render("Loading..."))
		return strings.Join(lines, "\n")
	case len(s.records) == 0:
		lines = append(lines, styleSubtle.Render("Nothing here yet"))
		return strings.Join(lines, "\n")
	case len(s.visible) == 0:
		lines = append(lines, styleSubtle.Render("No match for "+m.filter.Value()))
		return strings.Join(lines, "\n")
	}

	pageSize := max(1, height-ListOverheadLines)
	if s.cursor < s.offset {
		s.offset = s.cursor
	} else if s.cursor >= s.offset+pageSize {
		s.offset = s.cursor - pageSize + 1
	}
	end := min(len(s.visible), s.offset+pageSize)

	for i := s.offset; i < end; i++ {
		record := s.records[s.visible[i]]
		line := truncate(recordLabel(record), width)
		switch {
		case i == s.cursor:
			line = styleSelected.Width(width).Render(line)
		case recordDone(record):
			line = styleSubtle.Render(line)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "", styleSubtle.Render(fmt.Sprintf("[%d/%d]", s.cursor+1, len(s.visible))))
	return strings.Join(lines, "\n")
}

// detailScreen shows one record
type detailScreen struct {
	section string
	id      string
	record  any
}

func (s *detailScreen) title() string                { return fmt.Sprintf("%s #%s", sectionTitle(s.section), s.id) }
func (s *detailScreen) parent() string               { return router.CollectionPath(s.section) }
func (s *detailScreen) setRecord(record any)         { s.record = record }
func (s *detailScreen) keyContext() keybinds.Context { return keybinds.ContextDetail }
func (s *detailScreen) help() []keybinds.Action {
	return []keybinds.Action{
		keybinds.ActionEdit, keybinds.ActionCopy, keybinds.ActionDelete,
		keybinds.ActionReload, keybinds.ActionUp,
	}
}

func (s *detailScreen) load(m *Model) tea.Cmd {
	return getRecord(m, s.section, s.id)
}

func (s *detailScreen) handleAction(m *Model, action keybinds.Action) (tea.Cmd, bool) {
	switch action {
	case keybinds.ActionEdit:
		return m.navigate(router.EditPath(s.section, s.id)), true
	case keybinds.ActionCopy:
		if s.record == nil {
			return m.setErrorMessage("Nothing to copy yet"), true
		}
		return copyToClipboard(s.record), true
	case keybinds.ActionDelete:
		m.pendingDelete = s.id
		m.mode = ModeDeleteConfirm
	case keybinds.ActionReload:
		return m.load(), true
	default:
		return nil, false
	}
	return nil, true
}

func (s *detailScreen) render(m *Model, width, _ int) string {
	lines := []string{styleTitle.Render(s.title()), ""}
	if s.record == nil {
		if m.loading {
			lines = append(lines, styleSubtle.Render("Loading..."))
		}
		return strings.Join(lines, "\n")
	}

	obj, ok := s.record.(map[string]any)
	if !ok {
		lines = append(lines, formatJSON(s.record))
		return strings.Join(lines, "\n")
	}

	for _, key := range fieldOrder(obj) {
		value := formatValue(obj[key])
		if key == "done" && obj[key] == true {
			value = styleSuccess.Render(value)
		}
		lines = append(lines, truncate(fmt.Sprintf("%-12s %s", key, value), width))
	}
	return strings.Join(lines, "\n")
}

// formScreen edits one record as JSON. A creating form has no id and no route
// of its own: it sits on the list location until the record exists.
type formScreen struct {
	section  string
	id       string
	creating bool
	record   any
	draft    string
	issues   []api.ValidationIssue
}

func (s *formScreen) title() string {
	if s.creating {
		return "New " + sectionTitle(s.section)
	}
	return fmt.Sprintf("Edit %s #%s", sectionTitle(s.section), s.id)
}

func (s *formScreen) parent() string {
	if s.creating {
		return router.CollectionPath(s.section)
	}
	return router.DetailPath(s.section, s.id)
}

func (s *formScreen) keyContext() keybinds.Context { return keybinds.ContextForm }
func (s *formScreen) help() []keybinds.Action {
	return []keybinds.Action{keybinds.ActionSave, keybinds.ActionCancel}
}

func (s *formScreen) setRecord(record any) {
	s.record = record
	if obj, ok := record.(map[string]any); ok {
		editable := make(map[string]any, len(obj))
		for k, v := range obj {
			if k != "id" {
				editable[k] = v
			}
		}
		record = editable
	}
	s.draft = formatJSON(record)
}

func (s *formScreen) load(m *Model) tea.Cmd {
	if s.creating {
		return nil
	}
	return getRecord(m, s.section, s.id)
}

// handleAction only sees keys outside the editor, before the record has loaded
func (s *formScreen) handleAction(m *Model, action keybinds.Action) (tea.Cmd, bool) {
	if action == keybinds.ActionReload && !s.creating {
		return m.load(), true
	}
	return nil, false
}

// submit sends the editor content as the new record
func (s *formScreen) submit(m *Model) tea.Cmd {
	var payload any
	if err := json.Unmarshal([]byte(m.editor.Value()), &payload); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Invalid JSON: %v", err))
	}

	s.issues = nil
	m.loading = true
	client := m.client.Collection(s.section)
	ctx, seq, section, id := m.ctx, m.seq, s.section, s.id
	if s.creating {
		return func() tea.Msg {
			record, err := client.Create(ctx, payload)
			return recordSavedMsg{seq: seq, section: section, id: recordID(record), record: record, created: true, err: err}
		}
	}
	return func() tea.Msg {
		record, err := client.Update(ctx, id, payload)
		return recordSavedMsg{seq: seq, section: section, id: id, record: record, err: err}
	}
}

// newTaskTemplate is the editor content of a creating form
func newTaskTemplate() map[string]any {
	return map[string]any{
		"title":      "",
		"start":      "",
		"end":        "",
		"importance": 1,
		"memo":       nil,
		"type":       "",
		"done":       false,
	}
}

func (s *formScreen) render(m *Model, _ int, _ int) string {
	lines := []string{styleTitle.Render(s.title()), ""}
	if s.record == nil {
		if m.loading {
			lines = append(lines, styleSubtle.Render("Loading..."))
		}
		return strings.Join(lines, "\n")
	}

	lines = append(lines, m.editor.View())
	if len(s.issues) > 0 {
		lines = append(lines, "")
		for _, issue := range s.issues {
			lines = append(lines, styleError.Render(fmt.Sprintf("%s: %s", issueField(issue), issue.Msg)))
		}
	}
	return strings.Join(lines, "\n")
}

func getRecord(m *Model, section, id string) tea.Cmd {
	client := m.client.Collection(section)
	ctx, seq := m.ctx, m.seq
	return func() tea.Msg {
		record, err := client.Get(ctx, id)
		return recordLoadedMsg{seq: seq, record: record, err: err}
	}
}

func sectionTitle(section string) string {
	for _, s := range menuSections {
		if s.section == section {
			return s.label
		}
	}
	return section
}

// recordID renders a decoded JSON id as a path segment
func recordID(record any) string {
	obj, ok := record.(map[string]any)
	if !ok {
		return ""
	}
	switch id := obj["id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func recordDone(record any) bool {
	obj, _ := record.(map[string]any)
	return obj["done"] == true
}

// recordLabel is the one-line form of a record used in lists and for filtering
func recordLabel(record any) string {
	obj, ok := record.(map[string]any)
	if !ok {
		return formatValue(record)
	}

	var sb strings.Builder
	sb.WriteString("#" + recordID(record))
	if title, ok := obj["title"].(string); ok {
		sb.WriteString(" " + title)
	}
	start, _ := obj["start"].(string)
	end, _ := obj["end"].(string)
	if start != "" || end != "" {
		sb.WriteString(fmt.Sprintf("  %s-%s", start, end))
	}
	if recordDone(record) {
		sb.WriteString(" [done]")
	}
	return sb.String()
}

var knownFields = []string{"id", "title", "start", "end", "importance", "memo", "type", "done"}

// fieldOrder lists known task fields first, then the rest alphabetically
func fieldOrder(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	seen := make(map[string]bool, len(knownFields))
	for _, k := range knownFields {
		if _, ok := obj[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range obj {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return formatJSON(val)
	}
}

func formatJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// issueField drops the "body" prefix FastAPI puts on request-body locations
func issueField(issue api.ValidationIssue) string {
	loc := issue.Loc
	if len(loc) > 1 && loc[0] == "body" {
		loc = loc[1:]
	}
	return strings.Join(loc, ".")
}
