package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/studiowebux/taskdeck/internal/api"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestObserver_RecordsGatewayCalls(t *testing.T) {
	m := openTestManager(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/habits":
			w.Write([]byte(`[]`))
		case "/habits/1":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Task not found"}`))
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":[]}`))
		}
	}))
	defer ts.Close()

	client := api.New(ts.URL, api.WithCollection("habits"), api.WithObserver(m.Observer(ts.URL, nil)))
	ctx := context.Background()
	client.List(ctx)
	client.List(ctx)
	client.Get(ctx, "1")
	client.Collection("schedules").Create(ctx, map[string]any{})

	entries, err := m.LoadRecent(ts.URL, 10)
	if err != nil {
		t.Fatalf("LoadRecent() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("recorded %d calls, want 4", len(entries))
	}
	latest := entries[0]
	if latest.Collection != "schedules" || latest.Operation != api.OpCreate || latest.StatusCode != 422 || latest.ErrorKind != "validation" {
		t.Errorf("latest entry = %+v", latest)
	}

	stats, err := m.GetStats(ts.URL)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	byKey := map[string]Stats{}
	for _, s := range stats {
		byKey[s.Collection+"/"+s.Operation] = s
	}

	list := byKey["habits/list"]
	if list.TotalCalls != 2 || list.SuccessCount != 2 || list.ErrorCount != 0 {
		t.Errorf("habits/list = %+v", list)
	}
	if list.StatusCodes[200] != 2 {
		t.Errorf("habits/list status codes = %v", list.StatusCodes)
	}

	get := byKey["habits/get"]
	if get.TotalCalls != 1 || get.ErrorCount != 1 || get.StatusCodes[404] != 1 {
		t.Errorf("habits/get = %+v", get)
	}

	create := byKey["schedules/create"]
	if create.ValidationErrors != 1 || create.ErrorCount != 1 {
		t.Errorf("schedules/create = %+v", create)
	}
}

func TestObserver_NetworkError(t *testing.T) {
	m := openTestManager(t)

	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client := api.New(url, api.WithObserver(m.Observer(url, nil)))
	client.List(context.Background())

	stats, err := m.GetStats(url)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if len(stats) != 1 || stats[0].NetworkErrors != 1 || stats[0].StatusCodes[0] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGetStats_SeparatesBackends(t *testing.T) {
	m := openTestManager(t)

	for _, base := range []string{"http://a", "http://a", "http://b"} {
		if err := m.Save(Entry{BaseURL: base, Collection: "tasks", Operation: api.OpList, Method: "GET", StatusCode: 200}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	a, _ := m.GetStats("http://a")
	b, _ := m.GetStats("http://b")
	if len(a) != 1 || a[0].TotalCalls != 2 {
		t.Errorf("stats for a = %+v", a)
	}
	if len(b) != 1 || b[0].TotalCalls != 1 {
		t.Errorf("stats for b = %+v", b)
	}
}

func TestGetStats_CacheInvalidatedOnSave(t *testing.T) {
	m := openTestManager(t)
	entry := Entry{BaseURL: "http://a", Collection: "tasks", Operation: api.OpGet, Method: "GET", StatusCode: 200}

	m.Save(entry)
	first, _ := m.GetStats("http://a")
	m.Save(entry)
	second, _ := m.GetStats("http://a")

	if first[0].TotalCalls != 1 || second[0].TotalCalls != 2 {
		t.Errorf("totals = %d then %d, want 1 then 2", first[0].TotalCalls, second[0].TotalCalls)
	}
}

func TestClear(t *testing.T) {
	m := openTestManager(t)
	m.Save(Entry{BaseURL: "http://a", Collection: "habits", Operation: api.OpList, Method: "GET", StatusCode: 200})
	m.Save(Entry{BaseURL: "http://a", Collection: "tasks", Operation: api.OpList, Method: "GET", StatusCode: 200})

	if err := m.ClearForCollection("http://a", "habits"); err != nil {
		t.Fatalf("ClearForCollection() error = %v", err)
	}
	stats, _ := m.GetStats("http://a")
	if len(stats) != 1 || stats[0].Collection != "tasks" {
		t.Errorf("after ClearForCollection stats = %+v", stats)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	stats, _ = m.GetStats("http://a")
	if len(stats) != 0 {
		t.Errorf("after Clear stats = %+v", stats)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	m := openTestManager(t)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	m.Save(Entry{BaseURL: "http://a", Collection: "tasks", Operation: api.OpList, Method: "GET", StatusCode: 200, Timestamp: at})

	entries, err := m.LoadRecent("http://a", 1)
	if err != nil {
		t.Fatalf("LoadRecent() error = %v", err)
	}
	if !entries[0].Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", entries[0].Timestamp, at)
	}
}
