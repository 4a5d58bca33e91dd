package report

import "time"

// DefaultTaskName replaces a missing task name during assembly.
const DefaultTaskName = "general"

// AllProjects is the distinguished project selection meaning "every project
// of the chosen client".
const AllProjects = "*"

// SmallProjectsClient is the client whose reports omit the client name from
// the filename and always carry the project segment instead.
const SmallProjectsClient = "smaller projects"

// TimeEntry is one assembled report row. Immutable once assembled; the
// duration comes from the service's own interval fields and is never
// negative by construction.
type TimeEntry struct {
	Description   string
	UserName      string
	ClientID      string
	ClientName    string
	ProjectID     string
	ProjectName   string
	TaskName      string
	Start         time.Time // day precision
	DurationHours float64
}

// ManualRow is the single optional operator-added row: free-text description,
// positive duration, no date and no task.
type ManualRow struct {
	Description   string
	DurationHours float64
}

// Selection is the operator's working set: the chosen period, client and
// projects, and the (possibly edited) row table. This is the one place state
// is mutated after the fetch.
type Selection struct {
	From        time.Time
	To          time.Time
	ClientName  string
	ClientID    string
	Projects    []string
	AllProjects bool
	Rows        []TimeEntry
	Manual      *ManualRow
}

// TotalHours is the exact sum of all rendered durations, including the
// manual row when present.
func (s Selection) TotalHours() float64 {
	var total float64
	for _, row := range s.Rows {
		total += row.DurationHours
	}
	if s.Manual != nil {
		total += s.Manual.DurationHours
	}
	return total
}
