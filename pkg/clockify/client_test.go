package clockify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Projects_paginates(t *testing.T) {
	pages := map[string][]rawProject{
		"1": {{ID: "p1", Name: "Website", ClientID: "c1"}, {ID: "p2", Name: "App", ClientID: "c1"}},
		"2": {{ID: "p3", Name: "Intern", ClientID: "c2"}},
		"3": {},
	}
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws1/projects", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		require.NoError(t, json.NewEncoder(w).Encode(pages[page]))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key", "ws1")
	projects, err := client.Projects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, requested)
	require.Len(t, projects, 3)
	assert.Equal(t, Project{ID: "p3", Name: "Intern", ClientID: "c2"}, projects[2])
}

func TestHTTPClient_TimeEntries(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	entryEnd := time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws1/user/u1/time-entries", r.URL.Path)
		assert.Equal(t, "2025-06-01T00:00:00Z", r.URL.Query().Get("start"))
		assert.Equal(t, "2025-06-30T23:59:59Z", r.URL.Query().Get("end"))
		assert.Equal(t, "true", r.URL.Query().Get("hydrated"))
		if r.URL.Query().Get("page") != "1" {
			_, _ = w.Write([]byte("[]"))
			return
		}
		_, _ = w.Write([]byte(`[
			{
				"id": "e1",
				"description": "API review",
				"projectId": "p1",
				"task": {"name": "Review"},
				"timeInterval": {"start": "2025-06-02T09:30:00Z", "end": "2025-06-02T11:30:00Z"}
			},
			{
				"id": "e2",
				"description": "still running",
				"projectId": "p1",
				"timeInterval": {"start": "2025-06-02T12:00:00Z", "end": null}
			}
		]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key", "ws1")
	entries, err := client.TimeEntries(context.Background(), "u1", start, end)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "API review", entries[0].Description)
	assert.Equal(t, "Review", entries[0].TaskName)
	require.NotNil(t, entries[0].End)
	assert.Equal(t, entryEnd, entries[0].End.UTC())
	assert.Nil(t, entries[1].End)
	assert.Empty(t, entries[1].TaskName)
}

func TestHTTPClient_failedPageAbortsFetch(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`[{"id": "c1", "name": "Acme"}]`))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key", "ws1")
	clients, err := client.Clients(context.Background())

	assert.Nil(t, clients)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Contains(t, transportErr.Endpoint, "/clients")
}
