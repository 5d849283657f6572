package router

import (
	"errors"
	"reflect"
	"testing"
)

type fakeView struct {
	name string
	id   string
}

func TestRegistry_Instantiate(t *testing.T) {
	reg := NewRegistry[fakeView]()
	reg.Register(TargetHabitDetail, func(p Params) fakeView {
		return fakeView{name: "detail", id: p["id"]}
	})
	reg.Register(TargetMain, func(p Params) fakeView {
		return fakeView{name: "main", id: p["id"]}
	})

	r := Default()

	view, err := reg.Instantiate(r.Resolve("/habits/42"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view != (fakeView{name: "detail", id: "42"}) {
		t.Errorf("view = %+v", view)
	}

	view, err = reg.Instantiate(r.Resolve("/anything/else"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.name != "main" || view.id != "" {
		t.Errorf("fallback view = %+v", view)
	}
}

func TestRegistry_UnknownTarget(t *testing.T) {
	reg := NewRegistry[fakeView]()

	_, err := reg.Instantiate(Default().Resolve("/schedules"))
	if !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("err = %v, want ErrUnknownTarget", err)
	}
}

func TestRegistry_Missing(t *testing.T) {
	reg := NewRegistry[fakeView]()
	reg.Register(TargetMain, func(Params) fakeView { return fakeView{} })
	reg.Register(TargetHabitTracker, func(Params) fakeView { return fakeView{} })

	missing := reg.Missing(DefaultRoutes)
	want := []Target{TargetHabitDetail, TargetHabitForm, TargetSchedule, TargetScheduleDetail, TargetScheduleForm}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}

	if got := reg.Targets(); !reflect.DeepEqual(got, []Target{TargetHabitTracker, TargetMain}) {
		t.Errorf("targets = %v", got)
	}
}
