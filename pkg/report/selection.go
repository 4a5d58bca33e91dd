package report

import "time"

// BuildSelection narrows a loaded dataset to one client and a set of
// projects and freezes the result as the operator's working set. Yields
// ErrEmptyResult instead of an empty table so no caller ever renders an
// empty report.
func BuildSelection(ds *Dataset, from, to time.Time, clientName string, projects []string) (Selection, error) {
	clientRows, clientID, err := FilterByClient(ds.Rows, ds.Clients, clientName)
	if err != nil {
		return Selection{}, err
	}

	all := false
	for _, name := range projects {
		if name == AllProjects {
			all = true
			break
		}
	}
	rows, err := FilterByProjects(clientRows, projects)
	if err != nil {
		return Selection{}, err
	}
	if len(rows) == 0 {
		return Selection{}, ErrEmptyResult
	}
	SortRows(rows)

	selected := projects
	if all {
		selected = ProjectNames(clientRows)
	}
	return Selection{
		From:        from,
		To:          to,
		ClientName:  clientName,
		ClientID:    clientID,
		Projects:    selected,
		AllProjects: all || sameNames(selected, ProjectNames(clientRows)),
		Rows:        rows,
	}, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, name := range a {
		set[normalize(name)] = true
	}
	for _, name := range b {
		if !set[normalize(name)] {
			return false
		}
	}
	return true
}
