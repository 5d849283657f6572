/*
Package router maps locations to the view or modal that should be shown.

The visible view is a pure function of the current location: opening the detail modal
of habit 5 means navigating to /habits/5, and loading /habits/5 directly shows the same
modal. There is no separate "modal open" state.

# Route Table

	/                      MainView
	/habits                HabitTrackerView
	/habits/:id            HabitDetailModal     (id forwarded)
	/habits/:id/edit       HabitFormModal       (id forwarded)
	/schedules             ScheduleView
	/schedules/:id         ScheduleDetailModal  (id forwarded)
	/schedules/:id/edit    ScheduleForm         (id forwarded)
	anything else          redirect to /

Routes are tried in order and the first match wins.

# History

Navigator records resolved locations only. A location that ends in a redirect is
never pushed, so Back cannot return to it.

# Components

Registry maps targets to factories. The router never builds components itself:

	reg := router.NewRegistry[View]()
	reg.Register(router.TargetHabitDetail, func(p router.Params) View {
		return newDetail("habits", p["id"])
	})
	view, err := reg.Instantiate(nav.Current())
*/
package router
