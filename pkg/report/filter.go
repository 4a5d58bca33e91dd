package report

import (
	"sort"
	"strings"

	"github.com/zeitbericht/zeitbericht/pkg/clockify"
)

// FilterByClient keeps the rows of exactly one client, matched by trimmed,
// case-insensitive name against the client reference table. A name mapping
// to more than one client id is an error to be disambiguated by the
// operator, never resolved silently. Returns the matched client id.
func FilterByClient(rows []TimeEntry, clients []clockify.Client, name string) ([]TimeEntry, string, error) {
	key := normalize(name)

	idsByName := make(map[string][]string)
	for _, c := range clients {
		idsByName[normalize(c.Name)] = append(idsByName[normalize(c.Name)], c.ID)
	}
	ids, ok := idsByName[key]
	if !ok {
		available := make([]string, 0, len(clients))
		seen := make(map[string]bool)
		for _, c := range clients {
			if !seen[c.Name] {
				seen[c.Name] = true
				available = append(available, c.Name)
			}
		}
		sort.Strings(available)
		return nil, "", &NotFoundError{Kind: "client", Name: name, Available: available}
	}
	if len(ids) > 1 {
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		return nil, "", &AmbiguousClientError{Name: name, IDs: sorted}
	}

	clientID := ids[0]
	filtered := make([]TimeEntry, 0, len(rows))
	for _, row := range rows {
		if normalize(row.ClientName) == key && row.ClientID == clientID {
			filtered = append(filtered, row)
		}
	}
	return filtered, clientID, nil
}

// FilterByProjects keeps the rows of the named projects. The selection may
// be a single name, several names, or the AllProjects value, which keeps
// every row. Unknown names fail with the list of projects present in rows.
func FilterByProjects(rows []TimeEntry, names []string) ([]TimeEntry, error) {
	for _, name := range names {
		if name == AllProjects {
			return append([]TimeEntry(nil), rows...), nil
		}
	}

	available := ProjectNames(rows)
	availableSet := make(map[string]bool, len(available))
	for _, name := range available {
		availableSet[normalize(name)] = true
	}

	selected := make(map[string]bool, len(names))
	for _, name := range names {
		key := normalize(name)
		if !availableSet[key] {
			return nil, &NotFoundError{Kind: "project", Name: name, Available: available}
		}
		selected[key] = true
	}

	filtered := make([]TimeEntry, 0, len(rows))
	for _, row := range rows {
		if selected[normalize(row.ProjectName)] {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// ClientNames lists the distinct client names present in rows, sorted.
func ClientNames(rows []TimeEntry) []string {
	return distinct(rows, func(row TimeEntry) string { return row.ClientName })
}

// ProjectNames lists the distinct project names present in rows, sorted.
func ProjectNames(rows []TimeEntry) []string {
	return distinct(rows, func(row TimeEntry) string { return row.ProjectName })
}

func distinct(rows []TimeEntry, field func(TimeEntry) string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		name := field(row)
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
