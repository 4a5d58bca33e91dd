package clockify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.clockify.me/api/v1"

	// pageSize is fixed; pages are requested until the service returns an empty one.
	pageSize = 200
)

type User struct {
	ID   string
	Name string
}

type Project struct {
	ID       string
	Name     string
	ClientID string
}

// Client is workspace reference data. Names are not guaranteed unique;
// several ids may share one name.
type Client struct {
	ID   string
	Name string
}

// TimeEntry is one logged interval as reported by the workspace. End is nil
// for an entry that is still running.
type TimeEntry struct {
	ID          string
	Description string
	ProjectID   string
	TaskName    string
	Start       time.Time
	End         *time.Time
}

// API is the read-only surface of the time-tracking service used by the
// report pipeline.
type API interface {
	Users(ctx context.Context) ([]User, error)
	Projects(ctx context.Context) ([]Project, error)
	Clients(ctx context.Context) ([]Client, error)
	TimeEntries(ctx context.Context, userID string, start, end time.Time) ([]TimeEntry, error)
}

// HTTPClient implements API against the Clockify REST API.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	workspaceID string
	http        *http.Client
}

func NewHTTPClient(baseURL, apiKey, workspaceID string) *HTTPClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		workspaceID: workspaceID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) Users(ctx context.Context) ([]User, error) {
	path := fmt.Sprintf("/workspaces/%s/users", c.workspaceID)
	raw, err := fetchAll[rawUser](ctx, c, path, nil)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(raw))
	for _, u := range raw {
		out = append(out, User{ID: u.ID, Name: u.Name})
	}
	return out, nil
}

func (c *HTTPClient) Projects(ctx context.Context) ([]Project, error) {
	path := fmt.Sprintf("/workspaces/%s/projects", c.workspaceID)
	raw, err := fetchAll[rawProject](ctx, c, path, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(raw))
	for _, p := range raw {
		out = append(out, Project{ID: p.ID, Name: p.Name, ClientID: p.ClientID})
	}
	return out, nil
}

func (c *HTTPClient) Clients(ctx context.Context) ([]Client, error) {
	path := fmt.Sprintf("/workspaces/%s/clients", c.workspaceID)
	raw, err := fetchAll[rawClient](ctx, c, path, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Client, 0, len(raw))
	for _, cl := range raw {
		out = append(out, Client{ID: cl.ID, Name: cl.Name})
	}
	return out, nil
}

// TimeEntries fetches all entries of one user in [start, end].
func (c *HTTPClient) TimeEntries(ctx context.Context, userID string, start, end time.Time) ([]TimeEntry, error) {
	path := fmt.Sprintf("/workspaces/%s/user/%s/time-entries", c.workspaceID, userID)
	params := url.Values{}
	params.Set("start", start.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("end", end.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("hydrated", "true")
	raw, err := fetchAll[rawTimeEntry](ctx, c, path, params)
	if err != nil {
		return nil, err
	}
	out := make([]TimeEntry, 0, len(raw))
	for _, e := range raw {
		entry := TimeEntry{
			ID:          e.ID,
			Description: e.Description,
			ProjectID:   e.ProjectID,
			Start:       e.TimeInterval.Start,
		}
		if e.Task != nil {
			entry.TaskName = e.Task.Name
		}
		if e.TimeInterval.End != nil {
			end := *e.TimeInterval.End
			entry.End = &end
		}
		out = append(out, entry)
	}
	return out, nil
}

// fetchAll retrieves every page of a collection endpoint. A failure on any
// page aborts the whole fetch; there is no retry and no partial result.
func fetchAll[T any](ctx context.Context, c *HTTPClient, path string, params url.Values) ([]T, error) {
	var items []T
	for page := 1; ; page++ {
		u, err := url.Parse(c.baseURL + path)
		if err != nil {
			return nil, &TransportError{Endpoint: path, Err: err}
		}
		q := u.Query()
		for key, vals := range params {
			for _, v := range vals {
				q.Set(key, v)
			}
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("page-size", strconv.Itoa(pageSize))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, &TransportError{Endpoint: path, Err: err}
		}
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			log.Errorf("clockify: request to %s failed: %v", path, err)
			return nil, &TransportError{Endpoint: path, Err: err}
		}
		batch, err := decodePage[T](resp)
		if err != nil {
			log.Errorf("clockify: reading %s page %d failed: %v", path, page, err)
			return nil, &TransportError{Endpoint: path, Err: err}
		}
		if len(batch) == 0 {
			break
		}
		items = append(items, batch...)
	}
	return items, nil
}

func decodePage[T any](resp *http.Response) ([]T, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	var batch []T
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// raw* structs mirror the Clockify JSON payloads.

type rawUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rawProject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
}

type rawClient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rawTimeEntry struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	ProjectID   string `json:"projectId"`
	Task        *struct {
		Name string `json:"name"`
	} `json:"task"`
	TimeInterval struct {
		Start time.Time  `json:"start"`
		End   *time.Time `json:"end"`
	} `json:"timeInterval"`
}
