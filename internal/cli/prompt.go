package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/taskdeck/internal/api"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	doneStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

type item struct {
	id    string
	title string
	done  bool
}

func (i item) FilterValue() string {
	return i.id + " " + i.title
}

func (i item) Title() string {
	title := fmt.Sprintf("#%s %s", i.id, i.title)
	if i.done {
		title += " [done]"
	}
	return title
}

func (i item) Description() string { return "" }

type selectorModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.choice = ""
			return m, tea.Quit

		case "enter":
			i, ok := m.list.SelectedItem().(item)
			if ok {
				m.choice = i.id
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: select • q/ctrl+c: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// selectID lets the user pick a record when no id was given on the command line
func selectID(ctx context.Context, client *api.Client, opts RunOptions) (string, error) {
	if !isInteractive(opts.Stdin) {
		return "", fmt.Errorf("an id is required for %s (non-interactive mode)", opts.Action)
	}

	result, err := client.List(ctx)
	if err != nil {
		return "", err
	}

	items := recordItems(result)
	if len(items) == 0 {
		return "", fmt.Errorf("%s is empty, nothing to %s", client.Name(), opts.Action)
	}

	const defaultWidth = 80
	const listHeight = 14

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = fmt.Sprintf("Select a record from %s to %s", client.Name(), opts.Action)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	p := tea.NewProgram(selectorModel{list: l}, tea.WithContext(ctx), tea.WithOutput(opts.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	choice := finalModel.(selectorModel).choice
	if choice == "" {
		return "", fmt.Errorf("selection cancelled")
	}
	return choice, nil
}

// recordItems turns a decoded list result into selectable items.
// Entries without an id are skipped.
func recordItems(result any) []list.Item {
	records, ok := result.([]any)
	if !ok {
		return nil
	}

	items := make([]list.Item, 0, len(records))
	for _, r := range records {
		obj, ok := r.(map[string]any)
		if !ok {
			continue
		}
		id := idString(obj["id"])
		if id == "" {
			continue
		}
		title, _ := obj["title"].(string)
		done, _ := obj["done"].(bool)
		items = append(items, item{id: id, title: title, done: done})
	}
	return items
}

// idString renders a decoded JSON id as a path segment
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	str := i.Title()

	fn := itemStyle.Render
	if i.done {
		fn = func(s ...string) string {
			return itemStyle.Render(doneStyle.Render(strings.Join(s, " ")))
		}
	}
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}
