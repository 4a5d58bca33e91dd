package wizard

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeitbericht/zeitbericht/internal/utils"
	"github.com/zeitbericht/zeitbericht/pkg/auth"
	"github.com/zeitbericht/zeitbericht/pkg/clockify"
	"github.com/zeitbericht/zeitbericht/pkg/render"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	authStore := auth.NewStore(map[string]auth.Credentials{
		"maria": {Password: "s3cret", APIKey: "key", WorkspaceID: "ws"},
	})
	handler := NewHandler(NewStore(), authStore, func(auth.Credentials) clockify.API {
		return testAPI()
	}, render.Options{CompanyName: "Musterfirma GmbH", Language: "de"})
	handler.SetClock(&utils.MockClock{FixedNow: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)})

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/login", handler.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", handler.Logout).Methods("POST")
	r.HandleFunc("/api/wizard", handler.CurrentState).Methods("GET")
	r.HandleFunc("/api/wizard/period", handler.SetPeriod).Methods("POST")
	r.HandleFunc("/api/wizard/clients", handler.ListClients).Methods("GET")
	r.HandleFunc("/api/wizard/projects", handler.ListProjects).Methods("GET")
	r.HandleFunc("/api/wizard/selection", handler.Select).Methods("POST")
	r.HandleFunc("/api/wizard/rows", handler.ConfirmRows).Methods("POST")
	r.HandleFunc("/api/wizard/report", handler.BuildReport).Methods("POST")
	r.HandleFunc("/api/wizard/report", handler.DownloadReport).Methods("GET")
	r.HandleFunc("/api/wizard/reset", handler.Reset).Methods("POST")

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return server, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHandler_fullWizardFlow(t *testing.T) {
	server, client := newTestServer(t)

	resp := postJSON(t, client, server.URL+"/api/auth/login", loginRequest{Username: "maria", Password: "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state stateDTO
	decodeInto(t, resp, &state)
	assert.Equal(t, StatePeriodPending, state.State)

	resp = postJSON(t, client, server.URL+"/api/wizard/period", periodRequest{Start: "01-06", End: "30-06"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var period periodResponse
	decodeInto(t, resp, &period)
	assert.Equal(t, StateDataLoaded, period.State)
	assert.Equal(t, 4, period.Rows)
	assert.Equal(t, []string{"Acme", "Globex"}, period.Clients)

	resp = postJSON(t, client, server.URL+"/api/wizard/selection", selectionRequest{Client: "Acme", Projects: []string{"Website"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var selection selectionResponse
	decodeInto(t, resp, &selection)
	assert.Equal(t, StateSelected, selection.State)
	assert.Len(t, selection.Rows, 2)
	assert.InDelta(t, 3.5, selection.TotalHours, 1e-9)
	assert.Equal(t, "Juni 2025", selection.Period)

	resp = postJSON(t, client, server.URL+"/api/wizard/rows", map[string]any{
		"manual": map[string]any{"description": "meeting", "durationHours": 1.0},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &selection)
	assert.Equal(t, StateRowsConfirmed, selection.State)
	assert.InDelta(t, 4.5, selection.TotalHours, 1e-9)

	resp = postJSON(t, client, server.URL+"/api/wizard/report", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var built reportResponse
	decodeInto(t, resp, &built)
	assert.Equal(t, StateReportReady, built.State)
	assert.Equal(t, "Stundenauflistung_Acme_Website_06_2025.pdf", built.Filename)

	resp, err := client.Get(server.URL + "/api/wizard/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), built.Filename)
	document, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(document[:4]))
}

func TestHandler_loginFailure(t *testing.T) {
	server, client := newTestServer(t)

	resp := postJSON(t, client, server.URL+"/api/auth/login", loginRequest{Username: "maria", Password: "wrong"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A failed login never creates a session.
	resp2, err := client.Get(server.URL + "/api/wizard")
	require.NoError(t, err)
	var state stateDTO
	decodeInto(t, resp2, &state)
	assert.Equal(t, StateUnauthenticated, state.State)
}

func TestHandler_invalidDateIsBadRequest(t *testing.T) {
	server, client := newTestServer(t)
	resp := postJSON(t, client, server.URL+"/api/auth/login", loginRequest{Username: "maria", Password: "s3cret"})
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/api/wizard/period", periodRequest{Start: "13/13/2025", End: "30-06"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_outOfOrderStepIsConflict(t *testing.T) {
	server, client := newTestServer(t)
	resp := postJSON(t, client, server.URL+"/api/auth/login", loginRequest{Username: "maria", Password: "s3cret"})
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/api/wizard/selection", selectionRequest{Client: "Acme", AllProjects: true})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandler_unknownClientListsOptions(t *testing.T) {
	server, client := newTestServer(t)
	resp := postJSON(t, client, server.URL+"/api/auth/login", loginRequest{Username: "maria", Password: "s3cret"})
	resp.Body.Close()
	resp = postJSON(t, client, server.URL+"/api/wizard/period", periodRequest{Start: "01-06", End: "30-06"})
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/api/wizard/selection", selectionRequest{Client: "Initech", AllProjects: true})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errResp struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	decodeInto(t, resp, &errResp)
	assert.Contains(t, errResp.Details, "Acme")
	assert.Contains(t, errResp.Details, "Globex")
}

func TestHandler_unauthenticatedRequests(t *testing.T) {
	server, client := newTestServer(t)
	resp := postJSON(t, client, server.URL+"/api/wizard/period", periodRequest{Start: "01-06", End: "30-06"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
