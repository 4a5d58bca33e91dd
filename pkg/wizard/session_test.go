package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeitbericht/zeitbericht/internal/utils"
	"github.com/zeitbericht/zeitbericht/pkg/clockify"
	"github.com/zeitbericht/zeitbericht/pkg/render"
	"github.com/zeitbericht/zeitbericht/pkg/report"
)

var (
	testFrom = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	testTo   = time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
)

func testAPI() *clockify.APIStub {
	stub := clockify.NewAPIStub()
	stub.SetUsers([]clockify.User{{ID: "u1", Name: "Anna"}})
	stub.SetClients([]clockify.Client{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Globex"}})
	stub.SetProjects([]clockify.Project{
		{ID: "p1", Name: "Website", ClientID: "c1"},
		{ID: "p2", Name: "App", ClientID: "c1"},
		{ID: "p3", Name: "Intern", ClientID: "c2"},
	})
	entry := func(id, project, desc string, day int, hours float64) clockify.TimeEntry {
		start := time.Date(2025, 6, day, 9, 0, 0, 0, time.UTC)
		end := start.Add(time.Duration(hours * float64(time.Hour)))
		return clockify.TimeEntry{ID: id, Description: desc, ProjectID: project, Start: start, End: &end}
	}
	stub.SetEntries("u1", []clockify.TimeEntry{
		entry("e1", "p1", "homepage", 2, 2),
		entry("e2", "p1", "checkout", 3, 1.5),
		entry("e3", "p2", "push notifications", 4, 2.5),
		entry("e4", "p3", "retro", 5, 1),
	})
	return stub
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	store := NewStore()
	return store.Create("maria", report.NewService(testAPI()))
}

func TestSession_fullWalk(t *testing.T) {
	session := newTestSession(t)
	assert.Equal(t, StatePeriodPending, session.State())

	rows, err := session.SetPeriod(context.Background(), testFrom, testTo)
	require.NoError(t, err)
	assert.Equal(t, 4, rows)
	assert.Equal(t, StateDataLoaded, session.State())

	clients, err := session.ClientNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, clients)

	projects, err := session.ProjectNames("Acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"App", "Website"}, projects)

	selection, err := session.Select("Acme", []string{"Website"})
	require.NoError(t, err)
	assert.Len(t, selection.Rows, 2)
	assert.Equal(t, StateSelected, session.State())

	selection, err = session.ConfirmRows(nil, &report.ManualRow{Description: "meeting", DurationHours: 1})
	require.NoError(t, err)
	assert.InDelta(t, 4.5, selection.TotalHours(), 1e-9)
	assert.Equal(t, StateRowsConfirmed, session.State())

	filename, err := session.BuildReport(render.Options{Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, "Stundenauflistung_Acme_Website_06_2025.pdf", filename)
	assert.Equal(t, StateReportReady, session.State())

	name, document, err := session.Document()
	require.NoError(t, err)
	assert.Equal(t, filename, name)
	assert.Equal(t, "%PDF", string(document[:4]))
}

func TestSession_rejectsOutOfOrderSteps(t *testing.T) {
	session := newTestSession(t)

	_, err := session.Select("Acme", []string{"Website"})
	assert.ErrorIs(t, err, ErrWrongState)

	_, err = session.ConfirmRows(nil, nil)
	assert.ErrorIs(t, err, ErrWrongState)

	_, err = session.BuildReport(render.Options{})
	assert.ErrorIs(t, err, ErrWrongState)

	_, _, err = session.Document()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestSession_confirmRowsValidation(t *testing.T) {
	session := newTestSession(t)
	_, err := session.SetPeriod(context.Background(), testFrom, testTo)
	require.NoError(t, err)
	_, err = session.Select("Acme", []string{"Website"})
	require.NoError(t, err)

	_, err = session.ConfirmRows(nil, &report.ManualRow{Description: "", DurationHours: 1})
	assert.Error(t, err)
	_, err = session.ConfirmRows(nil, &report.ManualRow{Description: "meeting", DurationHours: 0})
	assert.Error(t, err)
	_, err = session.ConfirmRows([]int{7}, nil)
	assert.Error(t, err)
	_, err = session.ConfirmRows([]int{}, nil)
	assert.ErrorIs(t, err, report.ErrEmptyResult)

	// dropping one fetched row keeps the total honest
	selection, err := session.ConfirmRows([]int{0}, nil)
	require.NoError(t, err)
	require.Len(t, selection.Rows, 1)
	assert.InDelta(t, selection.Rows[0].DurationHours, selection.TotalHours(), 1e-9)
}

func TestSession_resets(t *testing.T) {
	session := newTestSession(t)
	_, err := session.SetPeriod(context.Background(), testFrom, testTo)
	require.NoError(t, err)
	_, err = session.Select("Acme", []string{report.AllProjects})
	require.NoError(t, err)

	require.NoError(t, session.Reset(ResetToClient))
	assert.Equal(t, StateDataLoaded, session.State())
	_, err = session.ClientNames()
	assert.NoError(t, err)

	require.NoError(t, session.Reset(ResetToPeriod))
	assert.Equal(t, StatePeriodPending, session.State())
	_, err = session.ClientNames()
	assert.ErrorIs(t, err, ErrWrongState)

	assert.Error(t, session.Reset(ResetTarget("nowhere")))
}

func TestSession_emptyPeriodStaysPending(t *testing.T) {
	session := newTestSession(t)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	_, err := session.SetPeriod(context.Background(), from, to)
	assert.ErrorIs(t, err, report.ErrEmptyResult)
	assert.Equal(t, StatePeriodPending, session.State())
}

func TestStore_reloginSupersedesSession(t *testing.T) {
	store := NewStore()
	service := report.NewService(testAPI())

	first := store.Create("maria", service)
	second := store.Create("maria", service)
	require.NotEqual(t, first.ID, second.ID)

	_, ok := store.Get(first.ID)
	assert.False(t, ok, "superseded session must be gone")
	_, ok = store.Get(second.ID)
	assert.True(t, ok)

	other := store.Create("jonas", service)
	_, ok = store.Get(second.ID)
	assert.True(t, ok, "another user's login must not evict the session")
	_, ok = store.Get(other.ID)
	assert.True(t, ok)
}

func TestStore_idleSessionExpires(t *testing.T) {
	store := NewStore()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := &utils.MockClock{FixedNow: base}
	store.SetClock(clock)

	session := store.Create("maria", report.NewService(testAPI()))

	clock.SetNow(base.Add(sessionTTL - time.Minute))
	_, ok := store.Get(session.ID)
	require.True(t, ok, "activity within the ttl keeps the session alive")

	// The lookup above touched the session; idle time counts from there.
	clock.SetNow(base.Add(2*sessionTTL - 2*time.Minute))
	_, ok = store.Get(session.ID)
	require.True(t, ok)

	clock.SetNow(base.Add(3*sessionTTL))
	_, ok = store.Get(session.ID)
	assert.False(t, ok, "an idle session past the ttl is dropped")
}
