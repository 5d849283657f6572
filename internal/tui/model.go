package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/studiowebux/taskdeck/internal/api"
	"github.com/studiowebux/taskdeck/internal/events"
	"github.com/studiowebux/taskdeck/internal/keybinds"
	"github.com/studiowebux/taskdeck/internal/router"
	"github.com/studiowebux/taskdeck/internal/session"
)

// Mode represents the current TUI input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddress
	ModeFilter
	ModeEdit
	ModeDeleteConfirm
	ModeHelp
	ModeErrorDetail
)

// Options configures the shell
type Options struct {
	Client   *api.Client
	Sessions *session.Manager
	Logger   *zap.Logger
	// Keys defaults to the built-in bindings
	Keys *keybinds.Registry

	// Location opens the shell there instead of restoring the saved session
	Location string

	// Live follows the backend change feed and refreshes what is on screen
	Live bool
}

// Model represents the TUI state
type Model struct {
	ctx      context.Context
	client   *api.Client
	sessions *session.Manager
	logger   *zap.Logger
	keys     *keybinds.Registry

	nav      *router.Navigator
	registry *router.Registry[screen]
	state    router.State
	screen   screen

	// seq increments on every navigation; results from an older seq are dropped
	seq int

	// changes carries feed events when Options.Live is set
	changes chan events.Event

	mode Mode

	address       textinput.Model
	filter        textinput.Model
	editor        textarea.Model
	pendingDelete string // id awaiting y/n

	width  int
	height int

	loading       bool
	statusMsg     string
	errorMsg      string // Truncated error for footer
	fullErrorMsg  string // Full error message for detail modal
	statusClearAt time.Time
}

// New creates a new TUI model. The navigator starts at "/" until the session or
// Options.Location moves it.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Keys == nil {
		opts.Keys = keybinds.NewDefaultRegistry()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewManager("")
	}

	address := textinput.New()
	address.Prompt = ":"
	address.Placeholder = "/habits/12"
	address.CharLimit = 256

	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "filter"

	editor := textarea.New()
	editor.ShowLineNumbers = true
	editor.SetHeight(FormEditorHeight)
	editor.CharLimit = 0

	m := &Model{
		ctx:      ctx,
		client:   opts.Client,
		sessions: opts.Sessions,
		logger:   opts.Logger,
		keys:     opts.Keys,
		nav:      router.NewNavigator(router.Default(), router.Root),
		registry: newScreenRegistry(),
		address:  address,
		filter:   filter,
		editor:   editor,
	}
	if opts.Live {
		m.changes = make(chan events.Event, 16)
	}

	if err := m.sessions.Load(); err != nil {
		m.logger.Warn("ignoring unreadable session", zap.Error(err))
	}

	state := m.nav.Current()
	if opts.Location != "" {
		state = m.nav.Load(opts.Location)
	} else {
		state = m.sessions.RestoreInto(m.nav, m.client.BaseURL())
	}
	m.setState(state)

	// Keep the session in step with the history so a crash loses nothing
	m.nav.Subscribe(func(router.State) {
		m.sessions.Capture(m.nav)
	})

	return m
}

// Run starts the TUI
func Run(ctx context.Context, opts Options) error {
	// Stops the feed once the program exits
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, opts)
	defer m.Cleanup()
	m.startFeed()

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// Cleanup saves the navigation history
func (m *Model) Cleanup() {
	m.sessions.SetBaseURL(m.client.BaseURL())
	m.sessions.Capture(m.nav)
	if err := m.sessions.Save(); err != nil {
		m.logger.Error("failed to save session", zap.Error(err))
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(ModalMinWidth, m.width-ModalWidthMargin))
		m.address.Width = max(20, m.width-4)

	case listLoadedMsg:
		if msg.seq != m.seq {
			break
		}
		m.loading = false
		if msg.err != nil {
			cmd = m.setError(msg.err)
			break
		}
		if s, ok := m.screen.(*listScreen); ok {
			s.setRecords(msg.records)
			s.applyFilter(m.filter.Value())
		}

	case recordLoadedMsg:
		if msg.seq != m.seq {
			break
		}
		m.loading = false
		if msg.err != nil {
			cmd = m.setError(msg.err)
			break
		}
		m.screen.setRecord(msg.record)
		if s, ok := m.screen.(*formScreen); ok {
			m.editor.SetValue(s.draft)
			m.editor.Focus()
			m.mode = ModeEdit
		}

	case recordSavedMsg:
		// A result for a screen the user has left only reports its outcome
		current := msg.seq == m.seq
		if current {
			m.loading = false
		}
		if msg.err != nil {
			if s, ok := m.screen.(*formScreen); ok && current {
				s.issues = issuesOf(msg.err)
			}
			cmd = m.setStaleAwareError(msg.err, current)
			break
		}
		status := "Saved"
		if msg.created {
			status = "Created " + msg.section + "/" + msg.id
		} else if !current {
			status = "Saved " + msg.section + "/" + msg.id
		}
		if !current {
			cmd = m.setStatusMessage(status)
			break
		}
		target := router.DetailPath(msg.section, msg.id)
		if msg.id == "" {
			target = router.CollectionPath(msg.section)
		}
		cmd = tea.Batch(m.setStatusMessage(status), m.navigate(target))

	case recordDeletedMsg:
		current := msg.seq == m.seq
		if current {
			m.loading = false
		}
		if msg.err != nil {
			cmd = m.setStaleAwareError(msg.err, current)
			break
		}
		status := m.setStatusMessage("Deleted " + msg.section + "/" + msg.id)
		if !current {
			cmd = status
			break
		}
		if list, ok := m.screen.(*listScreen); ok && list.section == msg.section {
			cmd = tea.Batch(status, m.load())
		} else {
			cmd = tea.Batch(status, m.navigate(router.CollectionPath(msg.section)))
		}

	case changeMsg:
		cmd = tea.Batch(m.applyChange(events.Event(msg)), m.waitForChange())

	case copiedMsg:
		cmd = m.setStatusMessage("Copied to clipboard")

	case clearStatusMsg:
		if !time.Now().Before(m.statusClearAt) {
			m.statusMsg = ""
		}

	case errorMsg:
		cmd = m.setErrorMessage(string(msg))

	default:
		// Cursor blink and other component messages
		if m.mode == ModeEdit {
			m.editor, cmd = m.editor.Update(msg)
		}
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeHelp:
		return m.renderHelp()
	case ModeErrorDetail:
		return m.renderErrorDetail()
	default:
		return m.renderMain()
	}
}

// Current returns the navigation state on screen
func (m *Model) Current() router.State {
	return m.state
}

// Custom message types
type listLoadedMsg struct {
	seq     int
	records []any
	err     error
}

type recordLoadedMsg struct {
	seq    int
	record any
	err    error
}

type recordSavedMsg struct {
	seq     int
	section string
	id      string
	record  any
	created bool
	err     error
}

type recordDeletedMsg struct {
	seq     int
	section string
	id      string
	err     error
}

// changeMsg is an event of the backend change feed
type changeMsg events.Event

type copiedMsg struct{}

type clearStatusMsg struct{}

type errorMsg string

// Helper methods for setting messages with a timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.errorMsg = ""
	m.fullErrorMsg = ""
	m.statusMsg = truncate(msg, StatusMaxLength)
	m.statusClearAt = time.Now().Add(MessageTimeout)
	return tea.Tick(MessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.loading = false
	m.statusMsg = ""
	m.fullErrorMsg = msg
	m.errorMsg = truncate(firstLine(msg), StatusMaxLength)
	return nil
}

// setError reports a gateway failure. Validation issues are listed in the detail.
func (m *Model) setError(err error) tea.Cmd {
	m.logger.Debug("gateway call failed", zap.Error(err), zap.Int("status", api.StatusOf(err)))
	return m.setErrorMessage(describeError(err))
}

// setStaleAwareError reports err, leaving the loading state of the screen on
// display alone when err belongs to one the user has left
func (m *Model) setStaleAwareError(err error, current bool) tea.Cmd {
	loading := m.loading
	cmd := m.setError(err)
	if !current {
		m.loading = loading
	}
	return cmd
}
