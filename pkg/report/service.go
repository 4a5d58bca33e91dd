package report

import (
	"context"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zeitbericht/zeitbericht/pkg/auth"
	"github.com/zeitbericht/zeitbericht/pkg/clockify"
)

// Dataset is everything fetched for one period: the assembled row table and
// the reference tables it was resolved against. Held in memory for the
// session only.
type Dataset struct {
	Rows     []TimeEntry
	Clients  []clockify.Client
	Projects []clockify.Project
}

type Service interface {
	// Load fetches reference data and every user's entries in [from, to]
	// and assembles them into one flat table.
	Load(ctx context.Context, from, to time.Time) (*Dataset, error)
}

type ServiceImpl struct {
	api clockify.API
}

func NewService(api clockify.API) *ServiceImpl {
	return &ServiceImpl{api: api}
}

func (s *ServiceImpl) Load(ctx context.Context, from, to time.Time) (*Dataset, error) {
	if username, err := auth.CurrentUsername(ctx); err == nil {
		log.Debugf("loading dataset for %s", username)
	}
	projects, err := s.api.Projects(ctx)
	if err != nil {
		log.Errorf("failed to fetch projects: %v", err)
		return nil, err
	}
	clients, err := s.api.Clients(ctx)
	if err != nil {
		log.Errorf("failed to fetch clients: %v", err)
		return nil, err
	}
	users, err := s.api.Users(ctx)
	if err != nil {
		log.Errorf("failed to fetch users: %v", err)
		return nil, err
	}
	log.Debugf("loaded %d projects, %d clients, %d users", len(projects), len(clients), len(users))

	projectsByID := ProjectIndex(projects)
	clientsByID := ClientIndex(clients)

	// One user after another; the fetch is deliberately sequential.
	var rows []TimeEntry
	for _, user := range users {
		entries, err := s.api.TimeEntries(ctx, user.ID, from, to)
		if err != nil {
			log.Errorf("failed to fetch time entries of %s: %v", user.Name, err)
			return nil, err
		}
		rows = append(rows, Assemble(user, entries, projectsByID, clientsByID)...)
	}
	log.Infof("assembled %d rows between %s and %s", len(rows), from.Format("2006-01-02"), to.Format("2006-01-02"))

	return &Dataset{Rows: rows, Clients: clients, Projects: projects}, nil
}

// SortRows orders rows by start date, then user, then description, giving
// the table a deterministic render order.
func SortRows(rows []TimeEntry) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Start.Equal(rows[j].Start) {
			return rows[i].Start.Before(rows[j].Start)
		}
		if rows[i].UserName != rows[j].UserName {
			return rows[i].UserName < rows[j].UserName
		}
		return rows[i].Description < rows[j].Description
	})
}
