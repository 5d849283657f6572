package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFeedURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8000", "ws://localhost:8000/events"},
		{"http://localhost:8000/", "ws://localhost:8000/events"},
		{"https://tasks.example.com/api", "wss://tasks.example.com/api/events"},
	}

	for _, tt := range tests {
		got, err := FeedURL(tt.base)
		if err != nil {
			t.Errorf("FeedURL(%q) error = %v", tt.base, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FeedURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

// waitFor polls cond for up to a second
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWatch_ReceivesPublishedEvents(t *testing.T) {
	hub := NewHub(nil)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, ts.URL, func(e Event) { received <- e })
	}()

	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })

	hub.Publish(Event{Collection: "habits", Operation: OpCreate, ID: 3})
	hub.Publish(Event{Collection: "habits", Operation: OpRemove, ID: 3})

	for _, want := range []string{OpCreate, OpRemove} {
		select {
		case e := <-received:
			if e.Operation != want || e.Collection != "habits" || e.ID != 3 {
				t.Errorf("event = %+v, want %s habits/3", e, want)
			}
			if e.At.IsZero() {
				t.Error("Publish should stamp the event")
			}
		case <-time.After(time.Second):
			t.Fatalf("no %s event received", want)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}

	waitFor(t, "unsubscribe", func() bool { return hub.Subscribers() == 0 })
}

func TestWatch_HubClose(t *testing.T) {
	hub := NewHub(nil)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	done := make(chan error, 1)
	go func() {
		done <- Watch(context.Background(), ts.URL, func(Event) {})
	}()
	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })

	hub.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() after hub close = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after hub close")
	}

	if _, ok := hub.subscribe(); ok {
		t.Error("closed hub should refuse subscribers")
	}
}

func TestWatch_NoFeed(t *testing.T) {
	// A backend without a feed answers the handshake with 404
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	err := Watch(context.Background(), ts.URL, func(Event) {})
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("Watch() error = %v, want HTTP 404", err)
	}
}
