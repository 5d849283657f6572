package types

// Task is a record stored by the bundled backend. The gateway never sees this type;
// it exchanges tasks as untyped JSON.
type Task struct {
	ID         int64   `json:"id" yaml:"id"`
	Title      string  `json:"title" yaml:"title"`
	Start      string  `json:"start" yaml:"start"` // "07:00"
	End        string  `json:"end" yaml:"end"`     // "07:30"
	Importance int     `json:"importance" yaml:"importance"`
	Memo       *string `json:"memo" yaml:"memo"`
	Type       string  `json:"type" yaml:"type"`
	Done       bool    `json:"done" yaml:"done"`
}

// TaskInput is the writable part of a Task (create and update bodies)
type TaskInput struct {
	Title      string  `json:"title"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Importance int     `json:"importance"`
	Memo       *string `json:"memo"`
	Type       string  `json:"type"`
	Done       bool    `json:"done"`
}

// Apply copies input onto t, keeping the ID
func (t *Task) Apply(input TaskInput) {
	t.Title = input.Title
	t.Start = input.Start
	t.End = input.End
	t.Importance = input.Importance
	t.Memo = input.Memo
	t.Type = input.Type
	t.Done = input.Done
}

// Session represents ephemeral shell state persisted between runs
type Session struct {
	History      []string `json:"history,omitempty"`
	HistoryIndex int      `json:"historyIndex"`
	BaseURL      string   `json:"baseUrl,omitempty"`
}
