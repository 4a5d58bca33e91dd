package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/zeitbericht/zeitbericht/internal/rest"
	"github.com/zeitbericht/zeitbericht/internal/utils"
	"github.com/zeitbericht/zeitbericht/pkg/auth"
	"github.com/zeitbericht/zeitbericht/pkg/clockify"
	"github.com/zeitbericht/zeitbericht/pkg/render"
	"github.com/zeitbericht/zeitbericht/pkg/report"
)

const sessionCookie = "zeitbericht_session"

// APIFactory builds a workspace API client from one user's credentials.
// Swapped for a stub in tests.
type APIFactory func(creds auth.Credentials) clockify.API

func DefaultAPIFactory(creds auth.Credentials) clockify.API {
	return clockify.NewHTTPClient(creds.BaseURL, creds.APIKey, creds.WorkspaceID)
}

type Handler struct {
	store      *Store
	authStore  *auth.Store
	apiFactory APIFactory
	opts       render.Options
	clock      utils.Clock
}

func NewHandler(store *Store, authStore *auth.Store, apiFactory APIFactory, opts render.Options) *Handler {
	return &Handler{
		store:      store,
		authStore:  authStore,
		apiFactory: apiFactory,
		opts:       opts,
		clock:      utils.SystemClock{},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type stateDTO struct {
	State    State  `json:"state"`
	Username string `json:"username,omitempty"`
}

type periodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type periodResponse struct {
	State   State    `json:"state"`
	Rows    int      `json:"rows"`
	Clients []string `json:"clients"`
}

type selectionRequest struct {
	Client      string   `json:"client"`
	Projects    []string `json:"projects"`
	AllProjects bool     `json:"allProjects"`
}

type rowDTO struct {
	Description   string  `json:"description"`
	TaskName      string  `json:"taskName"`
	Date          string  `json:"date"`
	DurationHours float64 `json:"durationHours"`
}

type selectionResponse struct {
	State       State    `json:"state"`
	Client      string   `json:"client"`
	Projects    []string `json:"projects"`
	AllProjects bool     `json:"allProjects"`
	Period      string   `json:"period"`
	Rows        []rowDTO `json:"rows"`
	TotalHours  float64  `json:"totalHours"`
}

type confirmRowsRequest struct {
	Keep   []int `json:"keep,omitempty"`
	Manual *struct {
		Description   string  `json:"description"`
		DurationHours float64 `json:"durationHours"`
	} `json:"manual,omitempty"`
}

type reportResponse struct {
	State      State   `json:"state"`
	Filename   string  `json:"filename"`
	TotalHours float64 `json:"totalHours"`
}

type resetRequest struct {
	Target string `json:"target"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	creds, err := h.authStore.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Debugf("login failed for %q", req.Username)
		rest.RespondError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}
	service := report.NewService(h.apiFactory(creds))
	session := h.store.Create(req.Username, service)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	log.Infof("user %s logged in", req.Username)
	rest.RespondJSON(w, http.StatusOK, stateDTO{State: session.State(), Username: req.Username})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		h.store.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	rest.RespondJSON(w, http.StatusOK, stateDTO{State: StateUnauthenticated})
}

func (h *Handler) CurrentState(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondJSON(w, http.StatusOK, stateDTO{State: StateUnauthenticated})
		return
	}
	rest.RespondJSON(w, http.StatusOK, stateDTO{State: session.State(), Username: session.Username})
}

func (h *Handler) SetPeriod(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondError(w, http.StatusUnauthorized, "not logged in", "")
		return
	}
	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	now := h.clock.Now()
	from, err := report.ParseStartOfDay(req.Start, now)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	to, err := report.ParseEndOfDay(req.End, now)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	if to.Before(from) {
		rest.RespondError(w, http.StatusBadRequest, "end date before start date", "")
		return
	}
	ctx := auth.WithUsername(r.Context(), session.Username)
	rows, err := session.SetPeriod(ctx, from, to)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	clients, err := session.ClientNames()
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, periodResponse{State: session.State(), Rows: rows, Clients: clients})
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondError(w, http.StatusUnauthorized, "not logged in", "")
		return
	}
	clients, err := session.ClientNames()
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, clients)
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondError(w, http.StatusUnauthorized, "not logged in", "")
		return
	}
	projects, err := session.ProjectNames(r.URL.Query().Get("client"))
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, projects)
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondError(w, http.StatusUnauthorized, "not logged in", "")
		return
	}
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	projects := req.Projects
	if req.AllProjects {
		projects = []string{report.AllProjects}
	}
	selection, err := session.Select(req.Client, projects)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, h.selectionDTO(session.State(), selection))
}

func (h *Handler) ConfirmRows(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondError(w, http.StatusUnauthorized, "not logged in", "")
		return
	}
	var req confirmRowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	var manual *report.ManualRow
	if req.Manual != nil {
		manual = &report.ManualRow{
			Description:   strings.TrimSpace(req.Manual.Description),
			DurationHours: req.Manual.DurationHours,
		}
	}
	selection, err := session.ConfirmRows(req.Keep, manual)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, h.selectionDTO(session.State(), selection))
}

func (h *Handler) BuildReport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondError(w, http.StatusUnauthorized, "not logged in", "")
		return
	}
	filename, err := session.BuildReport(h.opts)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, reportResponse{
		State:      session.State(),
		Filename:   filename,
		TotalHours: session.Selection().TotalHours(),
	})
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondError(w, http.StatusUnauthorized, "not logged in", "")
		return
	}
	filename, document, err := session.Document()
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(document); err != nil {
		log.Errorf("failed to write report: %v", err)
	}
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		rest.RespondError(w, http.StatusUnauthorized, "not logged in", "")
		return
	}
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := session.Reset(ResetTarget(req.Target)); err != nil {
		h.respondPipelineError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, stateDTO{State: session.State(), Username: session.Username})
}

func (h *Handler) session(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return h.store.Get(cookie.Value)
}

func (h *Handler) selectionDTO(state State, selection report.Selection) selectionResponse {
	rows := make([]rowDTO, 0, len(selection.Rows))
	for _, row := range selection.Rows {
		rows = append(rows, rowDTO{
			Description:   row.Description,
			TaskName:      row.TaskName,
			Date:          row.Start.Format("2006-01-02"),
			DurationHours: row.DurationHours,
		})
	}
	return selectionResponse{
		State:       state,
		Client:      selection.ClientName,
		Projects:    selection.Projects,
		AllProjects: selection.AllProjects,
		Period:      report.PeriodLabel(selection.Rows, h.opts.Language),
		Rows:        rows,
		TotalHours:  selection.TotalHours(),
	}
}

// respondPipelineError maps the pipeline error taxonomy onto HTTP statuses.
func (h *Handler) respondPipelineError(w http.ResponseWriter, err error) {
	var formatErr *report.FormatError
	var notFound *report.NotFoundError
	var ambiguous *report.AmbiguousClientError
	var transport *clockify.TransportError
	switch {
	case errors.As(err, &formatErr):
		rest.RespondError(w, http.StatusBadRequest, "invalid date", formatErr.Error())
	case errors.As(err, &notFound):
		rest.RespondError(w, http.StatusNotFound, notFound.Kind+" not found", "available: "+strings.Join(notFound.Available, ", "))
	case errors.As(err, &ambiguous):
		rest.RespondError(w, http.StatusConflict, "ambiguous client name", ambiguous.Error())
	case errors.Is(err, report.ErrEmptyResult):
		rest.RespondError(w, http.StatusNotFound, "no entries found", "")
	case errors.Is(err, ErrWrongState):
		rest.RespondError(w, http.StatusConflict, "step not allowed", err.Error())
	case errors.As(err, &transport):
		log.Errorf("upstream fetch failed: %v", err)
		rest.RespondError(w, http.StatusBadGateway, "time-tracking service unreachable", "")
	default:
		log.Errorf("wizard step failed: %v", err)
		rest.RespondError(w, http.StatusBadRequest, err.Error(), "")
	}
}

// SetClock replaces the time source, used by tests.
func (h *Handler) SetClock(clock utils.Clock) {
	h.clock = clock
}
