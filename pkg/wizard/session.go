package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/zeitbericht/zeitbericht/internal/utils"
	"github.com/zeitbericht/zeitbericht/pkg/render"
	"github.com/zeitbericht/zeitbericht/pkg/report"
)

// State is one step of the report wizard. The machine is linear; the only
// way back is an explicit reset to PeriodPending or a logout.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StatePeriodPending   State = "period_pending"
	StateDataLoaded      State = "data_loaded"
	StateSelected        State = "client_project_selected"
	StateRowsConfirmed   State = "rows_confirmed"
	StateReportReady     State = "report_ready"
)

// ResetTarget names where a reset lands.
type ResetTarget string

const (
	ResetToPeriod ResetTarget = "period" // new period, keep the login
	ResetToClient ResetTarget = "client" // keep the loaded period data, pick another client
)

var ErrWrongState = errors.New("step not allowed in the current wizard state")

// Session is one operator's walk through the wizard. All data lives in
// memory and dies with the session.
type Session struct {
	ID       string
	Username string

	mu        sync.Mutex
	state     State
	service   report.Service
	from, to  time.Time
	dataset   *report.Dataset
	selection report.Selection
	document  []byte
	filename  string

	lastSeen time.Time
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) require(states ...State) error {
	for _, state := range states {
		if s.state == state {
			return nil
		}
	}
	return fmt.Errorf("%w: in %s", ErrWrongState, s.state)
}

// SetPeriod loads the workspace data for [from, to] and advances to
// DataLoaded. Allowed from any state past login; choosing a new period
// discards everything downstream.
func (s *Session) SetPeriod(ctx context.Context, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dataset, err := s.service.Load(ctx, from, to)
	if err != nil {
		return 0, err
	}
	s.from, s.to = from, to
	s.dataset = dataset
	s.selection = report.Selection{}
	s.document = nil
	s.filename = ""
	if len(dataset.Rows) == 0 {
		s.state = StatePeriodPending
		return 0, report.ErrEmptyResult
	}
	s.state = StateDataLoaded
	log.Debugf("session %s: %d rows loaded", s.ID, len(dataset.Rows))
	return len(dataset.Rows), nil
}

// ClientNames lists the clients present in the loaded period.
func (s *Session) ClientNames() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateDataLoaded, StateSelected, StateRowsConfirmed, StateReportReady); err != nil {
		return nil, err
	}
	return report.ClientNames(s.dataset.Rows), nil
}

// ProjectNames lists the projects of one client in the loaded period.
func (s *Session) ProjectNames(clientName string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateDataLoaded, StateSelected, StateRowsConfirmed, StateReportReady); err != nil {
		return nil, err
	}
	clientRows, _, err := report.FilterByClient(s.dataset.Rows, s.dataset.Clients, clientName)
	if err != nil {
		return nil, err
	}
	return report.ProjectNames(clientRows), nil
}

// Select narrows the loaded data to one client and a project selection.
func (s *Session) Select(clientName string, projects []string) (report.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateDataLoaded, StateSelected); err != nil {
		return report.Selection{}, err
	}
	selection, err := report.BuildSelection(s.dataset, s.from, s.to, clientName, projects)
	if err != nil {
		return report.Selection{}, err
	}
	s.selection = selection
	s.document = nil
	s.filename = ""
	s.state = StateSelected
	return selection, nil
}

// ConfirmRows freezes the row table. keep lists the indexes of fetched rows
// to retain (nil keeps all); manual is the optional extra row.
func (s *Session) ConfirmRows(keep []int, manual *report.ManualRow) (report.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateSelected, StateRowsConfirmed); err != nil {
		return report.Selection{}, err
	}
	if manual != nil {
		if manual.Description == "" || manual.DurationHours <= 0 {
			return report.Selection{}, errors.New("manual row needs a description and a positive duration")
		}
	}
	if keep != nil {
		rows := make([]report.TimeEntry, 0, len(keep))
		for _, idx := range keep {
			if idx < 0 || idx >= len(s.selection.Rows) {
				return report.Selection{}, fmt.Errorf("row index %d out of range", idx)
			}
			rows = append(rows, s.selection.Rows[idx])
		}
		if len(rows) == 0 {
			return report.Selection{}, report.ErrEmptyResult
		}
		s.selection.Rows = rows
	}
	s.selection.Manual = manual
	s.state = StateRowsConfirmed
	return s.selection, nil
}

// BuildReport renders the confirmed selection to a PDF held in the session.
func (s *Session) BuildReport(opts render.Options) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateRowsConfirmed, StateReportReady); err != nil {
		return "", err
	}
	document, err := render.PDF(s.selection, opts)
	if err != nil {
		return "", err
	}
	s.document = document
	s.filename = report.Filename(s.selection) + ".pdf"
	s.state = StateReportReady
	return s.filename, nil
}

// Document returns the rendered report for download.
func (s *Session) Document() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateReportReady); err != nil {
		return "", nil, err
	}
	return s.filename, s.document, nil
}

// Reset walks back without losing the login. ResetToPeriod drops everything
// loaded; ResetToClient keeps the period data and reopens the client step.
func (s *Session) Reset(target ResetTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch target {
	case ResetToPeriod:
		s.dataset = nil
		s.selection = report.Selection{}
		s.document = nil
		s.filename = ""
		s.state = StatePeriodPending
		return nil
	case ResetToClient:
		if s.dataset == nil {
			return fmt.Errorf("%w: no period loaded", ErrWrongState)
		}
		s.selection = report.Selection{}
		s.document = nil
		s.filename = ""
		s.state = StateDataLoaded
		return nil
	default:
		return fmt.Errorf("unknown reset target %q", target)
	}
}

// Selection returns a copy of the current working set.
func (s *Session) Selection() report.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// sessionTTL is the idle time after which a session is dropped on the next
// lookup.
const sessionTTL = 12 * time.Hour

// Store holds the live sessions, keyed by opaque id. One session per user:
// a re-login supersedes the previous one. lastSeen is guarded by the store
// mutex, not the session's own.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	byUser   map[string]string
	clock    utils.Clock
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		byUser:   make(map[string]string),
		clock:    utils.SystemClock{},
	}
}

func (st *Store) Create(username string, service report.Service) *Session {
	session := &Session{
		ID:       uuid.NewString(),
		Username: username,
		state:    StatePeriodPending,
		service:  service,
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if previous, ok := st.byUser[username]; ok {
		delete(st.sessions, previous)
	}
	session.lastSeen = st.clock.Now()
	st.sessions[session.ID] = session
	st.byUser[username] = session.ID
	return session
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	session, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.clock.Now()
	if now.Sub(session.lastSeen) > sessionTTL {
		st.remove(session)
		return nil, false
	}
	session.lastSeen = now
	return session, true
}

func (st *Store) remove(session *Session) {
	delete(st.sessions, session.ID)
	if st.byUser[session.Username] == session.ID {
		delete(st.byUser, session.Username)
	}
}

// SetClock replaces the time source, used by tests.
func (st *Store) SetClock(clock utils.Clock) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.clock = clock
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if session, ok := st.sessions[id]; ok {
		st.remove(session)
	}
}
