package tui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/taskdeck/internal/api"
	"github.com/studiowebux/taskdeck/internal/server"
	"github.com/studiowebux/taskdeck/internal/session"
	"github.com/studiowebux/taskdeck/internal/store"
	"github.com/studiowebux/taskdeck/internal/types"
)

// testEnv is a backend with seeded records and a session file, shared by the
// models a test creates
type testEnv struct {
	store       *store.Store
	client      *api.Client
	sessionPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ts := httptest.NewServer(server.New(st).Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		store:       st,
		client:      api.New(ts.URL, api.WithHTTPClient(ts.Client())),
		sessionPath: filepath.Join(dir, "session.json"),
	}
}

// seed creates a record and returns its id as a path segment
func (e *testEnv) seed(t *testing.T, collection, title, start, end string) string {
	t.Helper()
	task, err := e.store.Create(context.Background(), collection, types.TaskInput{
		Title:      title,
		Start:      start,
		End:        end,
		Importance: 1,
		Type:       "routine",
	})
	if err != nil {
		t.Fatalf("Failed to seed %s: %v", collection, err)
	}
	return strconv.FormatInt(task.ID, 10)
}

// model creates a shell over the environment, opened at location
func (e *testEnv) model(t *testing.T, location string) *Model {
	t.Helper()
	return New(context.Background(), Options{
		Client:   e.client,
		Sessions: session.NewManager(e.sessionPath),
		Location: location,
	})
}

// CreateTestModel creates a Model at location with two habits and one schedule
func CreateTestModel(t *testing.T, location string) (*Model, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	env.seed(t, api.CollectionHabits, "Morning run", "07:00", "07:30")
	env.seed(t, api.CollectionHabits, "Read book", "21:00", "21:30")
	env.seed(t, api.CollectionSchedules, "Standup", "09:30", "09:45")

	m := env.model(t, location)
	drain(t, m, m.Init())
	return m, env
}

// cmdWait bounds how long drain waits for a command. Status and cursor ticks
// outlast it and are dropped.
const cmdWait = time.Second

// drain runs cmd and feeds the shell's own messages back into the model until
// no command is left
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for depth := 0; cmd != nil && depth < 10; depth++ {
		var next []tea.Cmd
		for _, msg := range runCmd(cmd) {
			switch msg.(type) {
			case listLoadedMsg, recordLoadedMsg, recordSavedMsg, recordDeletedMsg, copiedMsg, errorMsg:
				_, c := m.Update(msg)
				next = append(next, c)
			}
		}
		cmd = tea.Batch(next...)
	}
}

// runCmd executes cmd, then every command of a batch concurrently
func runCmd(cmd tea.Cmd) []tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(cmdWait):
		return nil
	}

	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}

	out := make(chan []tea.Msg, len(batch))
	for _, c := range batch {
		go func(c tea.Cmd) {
			if c == nil {
				out <- nil
				return
			}
			out <- runCmd(c)
		}(c)
	}
	var msgs []tea.Msg
	for range batch {
		msgs = append(msgs, <-out...)
	}
	return msgs
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and drains what it triggers
func press(t *testing.T, m *Model, key tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(key)
	drain(t, m, cmd)
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
