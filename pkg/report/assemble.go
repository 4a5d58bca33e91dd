package report

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zeitbericht/zeitbericht/pkg/clockify"
)

// Assemble joins one user's raw entries against the project and client
// reference tables. Names are always resolved through the tables, never
// taken from fields embedded in the entry payload: the embedded copies are
// sometimes absent or stale on the remote service. Entries without a
// resolvable project or client, and entries that are still running, are
// dropped.
func Assemble(user clockify.User, entries []clockify.TimeEntry, projectsByID map[string]clockify.Project, clientsByID map[string]clockify.Client) []TimeEntry {
	rows := make([]TimeEntry, 0, len(entries))
	for _, entry := range entries {
		project, ok := projectsByID[entry.ProjectID]
		if !ok || project.Name == "" {
			log.Debugf("dropping entry %s: unknown project %q", entry.ID, entry.ProjectID)
			continue
		}
		client, ok := clientsByID[project.ClientID]
		if !ok || client.Name == "" {
			log.Debugf("dropping entry %s: project %q has no resolvable client", entry.ID, project.Name)
			continue
		}
		if entry.End == nil {
			log.Debugf("dropping entry %s: still running", entry.ID)
			continue
		}
		task := entry.TaskName
		if task == "" {
			task = DefaultTaskName
		}
		start := entry.Start.UTC()
		rows = append(rows, TimeEntry{
			Description:   entry.Description,
			UserName:      user.Name,
			ClientID:      client.ID,
			ClientName:    client.Name,
			ProjectID:     project.ID,
			ProjectName:   project.Name,
			TaskName:      task,
			Start:         time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
			DurationHours: entry.End.Sub(entry.Start).Hours(),
		})
	}
	return rows
}

// ProjectIndex and ClientIndex build the lookup tables for Assemble.

func ProjectIndex(projects []clockify.Project) map[string]clockify.Project {
	index := make(map[string]clockify.Project, len(projects))
	for _, p := range projects {
		index[p.ID] = p
	}
	return index
}

func ClientIndex(clients []clockify.Client) map[string]clockify.Client {
	index := make(map[string]clockify.Client, len(clients))
	for _, c := range clients {
		index[c.ID] = c
	}
	return index
}
