package router

import (
	"reflect"
	"testing"
)

func TestNavigator_PushAndHistory(t *testing.T) {
	nav := NewNavigator(Default(), "/")

	nav.Push("/habits")
	state := nav.Push("/habits/5")
	if state.Target() != TargetHabitDetail || state.Params["id"] != "5" {
		t.Fatalf("state = %+v", state)
	}

	want := []string{"/", "/habits", "/habits/5"}
	if got := nav.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}

	back, ok := nav.Back()
	if !ok || back.Target() != TargetHabitTracker {
		t.Errorf("back = %+v, %v", back, ok)
	}
	fwd, ok := nav.Forward()
	if !ok || fwd.Target() != TargetHabitDetail {
		t.Errorf("forward = %+v, %v", fwd, ok)
	}
	if _, ok := nav.Forward(); ok {
		t.Error("forward past the end should fail")
	}
}

func TestNavigator_InvalidPathNeverEntersHistory(t *testing.T) {
	nav := NewNavigator(Default(), "/")
	nav.Push("/habits")

	state := nav.Push("/does/not/exist")
	if state.Path != "/" || state.Target() != TargetMain {
		t.Fatalf("state = %+v", state)
	}
	if state.RedirectedFrom != "/does/not/exist" {
		t.Errorf("redirectedFrom = %q", state.RedirectedFrom)
	}

	for _, entry := range nav.Entries() {
		if entry == "/does/not/exist" {
			t.Fatalf("invalid path recorded in history: %v", nav.Entries())
		}
	}

	back, ok := nav.Back()
	if !ok || back.Path != "/habits" {
		t.Errorf("back should land on /habits, got %+v", back)
	}
}

func TestNavigator_LoadReplacesInvalidInitialPath(t *testing.T) {
	nav := NewNavigator(Default(), "/bogus")
	if got := nav.Entries(); !reflect.DeepEqual(got, []string{"/"}) {
		t.Errorf("initial entries = %v", got)
	}

	nav.Push("/schedules")
	state := nav.Load("/schedules/x/y/z")
	if state.Path != "/" {
		t.Errorf("load should redirect, got %s", state.Path)
	}
	if got := nav.Entries(); !reflect.DeepEqual(got, []string{"/", "/"}) {
		t.Errorf("entries = %v", got)
	}
}

func TestNavigator_PushSameLocationIsNoop(t *testing.T) {
	nav := NewNavigator(Default(), "/schedules/7/edit")

	calls := 0
	nav.Subscribe(func(State) { calls++ })

	first := nav.Push("/schedules/7/edit")
	second := nav.Push("/schedules/7/edit")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("states differ: %+v vs %+v", first, second)
	}
	if len(nav.Entries()) != 1 {
		t.Errorf("entries = %v", nav.Entries())
	}
	if calls != 0 {
		t.Errorf("subscribers notified %d times for a no-op", calls)
	}
}

func TestNavigator_PushTruncatesForwardHistory(t *testing.T) {
	nav := NewNavigator(Default(), "/")
	nav.Push("/habits")
	nav.Push("/habits/1")
	nav.Back()
	nav.Back()
	nav.Push("/schedules")

	want := []string{"/", "/schedules"}
	if got := nav.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
	if nav.CanGoForward() {
		t.Error("forward history should be dropped")
	}
	if !nav.CanGoBack() {
		t.Error("should be able to go back")
	}
}

func TestNavigator_Subscribe(t *testing.T) {
	nav := NewNavigator(Default(), "/")

	var seen []Target
	unsubscribe := nav.Subscribe(func(s State) { seen = append(seen, s.Target()) })

	nav.Push("/habits")
	nav.Push("/habits/2/edit")
	nav.Back()
	unsubscribe()
	nav.Push("/schedules")

	want := []Target{TargetHabitTracker, TargetHabitForm, TargetHabitTracker}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}

func TestNavigator_SnapshotRestore(t *testing.T) {
	nav := NewNavigator(Default(), "/")
	nav.Push("/schedules")
	nav.Push("/schedules/3")
	nav.Push("/schedules/3/edit")
	nav.Back()

	entries, index := nav.Snapshot()

	// A fresh process restoring the snapshot shows the same modal
	restored := NewNavigator(Default(), "/")
	state := restored.Restore(entries, index)

	if state.Target() != TargetScheduleDetail || state.Params["id"] != "3" {
		t.Errorf("restored state = %+v", state)
	}
	if !reflect.DeepEqual(state, nav.Current()) {
		t.Errorf("restored %+v, original %+v", state, nav.Current())
	}
	if fwd, ok := restored.Forward(); !ok || fwd.Target() != TargetScheduleForm {
		t.Errorf("forward after restore = %+v, %v", fwd, ok)
	}
}

func TestNavigator_RestoreSanitizes(t *testing.T) {
	nav := NewNavigator(Default(), "/")

	state := nav.Restore([]string{"/habits", "/evil/path"}, 7)
	if state.Path != "/" {
		t.Errorf("state = %+v", state)
	}
	if got := nav.Entries(); !reflect.DeepEqual(got, []string{"/habits", "/"}) {
		t.Errorf("entries = %v", got)
	}

	empty := nav.Restore(nil, 0)
	if empty.Target() != TargetMain {
		t.Errorf("empty restore = %+v", empty)
	}
}

func TestNavigator_RecordsCanonicalLocations(t *testing.T) {
	nav := NewNavigator(Default(), "/HABITS/")

	if state := nav.Push("/habits"); state.Target() != TargetHabitTracker {
		t.Fatalf("push = %+v", state)
	}
	if got := nav.Entries(); !reflect.DeepEqual(got, []string{"/habits"}) {
		t.Errorf("entries = %v, want one canonical entry", got)
	}

	nav.Push("/Habits/4/EDIT/")
	nav.Replace("/habits/4/edit")
	if got := nav.Entries(); !reflect.DeepEqual(got, []string{"/habits", "/habits/4/edit"}) {
		t.Errorf("entries = %v", got)
	}
}
