package router

// Target identifies the view or modal a route renders
type Target string

// Application targets
const (
	TargetMain           Target = "MainView"
	TargetHabitTracker   Target = "HabitTrackerView"
	TargetHabitDetail    Target = "HabitDetailModal"
	TargetHabitForm      Target = "HabitFormModal"
	TargetSchedule       Target = "ScheduleView"
	TargetScheduleDetail Target = "ScheduleDetailModal"
	TargetScheduleForm   Target = "ScheduleForm"
)

// Root is the path every unknown location redirects to
const Root = "/"

// Route is one static rule of the navigation table.
// A route either renders Target or redirects to Redirect.
type Route struct {
	Path     string `json:"path" yaml:"path"`
	Target   Target `json:"target,omitempty" yaml:"target,omitempty"`
	Props    bool   `json:"props,omitempty" yaml:"props,omitempty"` // forward path params to the component
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
}

// DefaultRoutes is the application's navigation table. Order matters: first match wins.
var DefaultRoutes = []Route{
	{Path: "/", Target: TargetMain},

	{Path: "/habits", Target: TargetHabitTracker},
	{Path: "/habits/:id", Target: TargetHabitDetail, Props: true},
	{Path: "/habits/:id/edit", Target: TargetHabitForm, Props: true},

	{Path: "/schedules", Target: TargetSchedule},
	{Path: "/schedules/:id", Target: TargetScheduleDetail, Props: true},
	{Path: "/schedules/:id/edit", Target: TargetScheduleForm, Props: true},

	{Path: "/:pathMatch(.*)*", Redirect: Root},
}

// Default returns a router over DefaultRoutes
func Default() *Router {
	r, err := New(DefaultRoutes)
	if err != nil {
		panic(err)
	}
	return r
}

// Paths for programmatic navigation

// CollectionPath returns the list path of a section ("habits" -> "/habits")
func CollectionPath(section string) string {
	return "/" + section
}

// DetailPath returns the detail modal path of a resource
func DetailPath(section, id string) string {
	return "/" + section + "/" + escapeSegment(id)
}

// EditPath returns the edit modal path of a resource
func EditPath(section, id string) string {
	return DetailPath(section, id) + "/edit"
}
