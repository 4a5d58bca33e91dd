package clockify

import (
	"context"
	"sync"
	"time"
)

// APIStub is an in-memory API implementation for tests and for wiring the
// wizard without a live workspace.
type APIStub struct {
	mu             sync.RWMutex
	users          []User
	projects       []Project
	clients        []Client
	entries        map[string][]TimeEntry // userID -> entries
	usersErr       error
	projectsErr    error
	clientsErr     error
	timeEntriesErr error
}

func NewAPIStub() *APIStub {
	return &APIStub{
		entries: make(map[string][]TimeEntry),
	}
}

func (s *APIStub) SetUsers(users []User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
}

func (s *APIStub) SetProjects(projects []Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
}

func (s *APIStub) SetClients(clients []Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = clients
}

func (s *APIStub) SetEntries(userID string, entries []TimeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = entries
}

func (s *APIStub) SetErrors(users, projects, clients, timeEntries error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersErr = users
	s.projectsErr = projects
	s.clientsErr = clients
	s.timeEntriesErr = timeEntries
}

func (s *APIStub) Users(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	result := make([]User, len(s.users))
	copy(result, s.users)
	return result, nil
}

func (s *APIStub) Projects(ctx context.Context) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.projectsErr != nil {
		return nil, s.projectsErr
	}
	result := make([]Project, len(s.projects))
	copy(result, s.projects)
	return result, nil
}

func (s *APIStub) Clients(ctx context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clientsErr != nil {
		return nil, s.clientsErr
	}
	result := make([]Client, len(s.clients))
	copy(result, s.clients)
	return result, nil
}

func (s *APIStub) TimeEntries(ctx context.Context, userID string, start, end time.Time) ([]TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.timeEntriesErr != nil {
		return nil, s.timeEntriesErr
	}
	result := make([]TimeEntry, 0, len(s.entries[userID]))
	for _, e := range s.entries[userID] {
		if e.Start.Before(start) || e.Start.After(end) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}
