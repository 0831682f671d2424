package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/daoban/internal/apiclient"
	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/alexanderramin/daoban/internal/events"
	"github.com/alexanderramin/daoban/internal/repository"
	"github.com/alexanderramin/daoban/internal/store"
	"github.com/alexanderramin/daoban/internal/testutil"
)

var now = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.Local)

type testEnv struct {
	app      *App
	backend  *testutil.FakeBackend
	store    *store.Store
	notifier *Notifier
	notes    *bytes.Buffer
}

// newTestEnv wires an App against a fake backend and an in-memory cache.
// Saves only happen on Flush.
func newTestEnv(t *testing.T, opts ...testutil.BackendOption) *testEnv {
	t.Helper()
	fb := testutil.NewFakeBackend(t, append([]testutil.BackendOption{testutil.WithUser("ana", "pw")}, opts...)...)

	notes := new(bytes.Buffer)
	notifier := NewNotifier(notes, func(apiclient.ErrorEvent) (bool, error) { return true, nil })
	bus := events.NewBus[apiclient.ErrorEvent](events.TopicAPIError, nil)
	bus.Subscribe(notifier.Handle)

	cfg := apiclient.DefaultConfig()
	cfg.BaseURL = fb.BaseURL()
	client, err := apiclient.New(cfg, bus, nil, apiclient.WithHTTPClient(fb.HTTPClient()))
	require.NoError(t, err)

	database := testutil.NewTestDB(t)
	cache := store.NewLocalCache(repository.NewSQLiteCacheRepo(database), testutil.NewTestUoW(database))
	s := store.New(client, cache,
		store.WithNow(testutil.FixedClock(now)),
		store.WithDebounce(time.Hour),
		store.WithSleep(func(context.Context, time.Duration) error { return nil }))
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return &testEnv{
		app: &App{
			Store:    s,
			Replayer: client,
			Now:      testutil.FixedClock(now),
		},
		backend:  fb,
		store:    s,
		notifier: notifier,
		notes:    notes,
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	_, err := executeCmd(t, e.app, "login", "-u", "ana", "-p", "pw", "--no-sync")
	require.NoError(t, err)
}

func (e *testEnv) saves() int {
	return len(e.backend.Calls(http.MethodPost, "/api/user/data"))
}

// --- auth ---

func TestLoginCmd_SyncsDocument(t *testing.T) {
	env := newTestEnv(t, testutil.WithStoredDocument("ana", `{"markedDates":{"2024-03-04":{"leave":true}}}`))

	out, err := executeCmd(t, env.app, "login", "--username", "ana", "--password", "pw")
	require.NoError(t, err)

	assert.Contains(t, out, "Logged in as")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "1 marked days")
	assert.True(t, env.store.IsAuthenticated())
}

func TestLoginCmd_MissingPasswordWithoutTerminal(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "login", "-u", "ana")
	assert.ErrorIs(t, err, errMissingCredentials)
	assert.Empty(t, env.backend.Calls(http.MethodPost, "/api/auth/login"))
}

func TestLoginCmd_WrongPasswordIsReported(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "login", "-u", "ana", "-p", "nope")
	require.Error(t, err)
	assert.False(t, env.store.IsAuthenticated())
	assert.Contains(t, env.notes.String(), "UNAUTHORIZED")
}

func TestRegisterCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "register", "-u", "bo", "-p", "secret", "--nickname", "Bo")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered")

	_, err = executeCmd(t, env.app, "register", "-u", "bo", "-p", "secret")
	require.Error(t, err)
	assert.Contains(t, env.notes.String(), "username already taken")
}

func TestLogoutCmd_ClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	out, err := executeCmd(t, env.app, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.False(t, env.store.IsAuthenticated())
}

func TestSyncCmd_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "sync")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

// --- shifts ---

func TestTodayCmd(t *testing.T) {
	env := newTestEnv(t)
	_, err := executeCmd(t, env.app, "rotation", "set", "--start-date", "2024-01-01")
	require.NoError(t, err)

	out, err := executeCmd(t, env.app, "today", "--date", "2024-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, "NIGHT")
	assert.Contains(t, out, "一采")
}

func TestTodayCmd_BadDate(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "today", "--date", "03/10/2024")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCalendarCmd_Month(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "calendar", "--month", "2024-02")
	require.NoError(t, err)
	assert.Contains(t, out, "FEBRUARY 2024")
	assert.Contains(t, out, "2024-02-29")
}

func TestCalendarCmd_InteractiveNeedsTerminal(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "calendar", "-i")
	assert.Error(t, err)
}

func TestMarkCmd_TogglesAndSaves(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	out, err := executeCmd(t, env.app, "mark", "2024-03-12", "overtime")
	require.NoError(t, err)
	assert.Contains(t, out, "set")
	assert.Equal(t, 1, env.saves())

	raw, ok := env.backend.Document("ana")
	require.True(t, ok)
	assert.Contains(t, string(raw), `"2024-03-12":{"overtime":true}`)

	out, err = executeCmd(t, env.app, "mark", "2024-03-12", "--type", "overtime")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")
	assert.Empty(t, env.store.Snapshot().MarkedDates)
}

func TestMarkCmd_RejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "mark", "2024-03-12", "holiday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holiday")
	assert.Empty(t, env.store.Snapshot().MarkedDates)
}

func TestMarkCmd_OfflineKeepsLocalChange(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "mark", "2024-03-12")
	require.NoError(t, err)
	assert.True(t, env.store.Snapshot().MarkedDates["2024-03-12"].Leave)
	assert.Zero(t, env.saves())
}

// --- rotation ---

func TestRotationSetCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "rotation", "set", "--start-date", "2024-02-01", "--initial-task", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-02-01")

	settings := env.store.Snapshot().Settings
	assert.Equal(t, 4, settings.InitialTaskID)
	assert.Equal(t, "2024-02-01", domain.DateKey(settings.StartDate))
}

func TestRotationSetCmd_Rejections(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "rotation", "set")
	assert.ErrorContains(t, err, "nothing to change")

	_, err = executeCmd(t, env.app, "rotation", "set", "--initial-task", "9")
	assert.ErrorContains(t, err, "between 1 and 6")
	assert.Equal(t, 1, env.store.Snapshot().Settings.InitialTaskID)
}

func TestRotationShowCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "rotation", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "18 days")
}

// --- salary ---

func TestSalarySetCmd(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	out, err := executeCmd(t, env.app, "salary", "set", "--base", "6000", "--set", "nightAllowance=300")
	require.NoError(t, err)
	assert.Contains(t, out, "6,000.00")
	assert.Contains(t, out, "nightAllowance")
	assert.Equal(t, 1, env.saves())

	salary := env.store.Snapshot().SalarySettings
	assert.Equal(t, 6000.0, salary[domain.SalaryBase])
	assert.Equal(t, 300.0, salary["nightAllowance"])
}

func TestSalarySetCmd_RejectsNonNumber(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "salary", "set", "--base", "lots")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSalaryMonthCmd_SetAndDelete(t *testing.T) {
	env := newTestEnv(t)
	_, err := executeCmd(t, env.app, "salary", "set", "--base", "5000", "--insurance", "400")
	require.NoError(t, err)

	out, err := executeCmd(t, env.app, "salary", "month", "2024-04", "--base", "7000")
	require.NoError(t, err)
	assert.Contains(t, out, "monthly override")

	override := env.store.Snapshot().MonthlySalarySettings["2024-04"]
	assert.Equal(t, 7000.0, override[domain.SalaryBase])
	assert.Equal(t, 400.0, override[domain.SalaryInsurance])

	_, err = executeCmd(t, env.app, "salary", "month", "2024-04", "--delete")
	require.NoError(t, err)
	assert.NotContains(t, env.store.Snapshot().MonthlySalarySettings, "2024-04")
}

func TestSalaryMonthCmd_BadMonth(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "salary", "month", "April", "--base", "1")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSalaryShowCmd_CountsMarks(t *testing.T) {
	env := newTestEnv(t)
	_, err := executeCmd(t, env.app, "mark", "2024-03-05", "double")
	require.NoError(t, err)

	out, err := executeCmd(t, env.app, "salary", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03")
	assert.Contains(t, out, "x2 1")
}

func TestRootCmd_ListsCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "--help")
	require.NoError(t, err)
	for _, name := range []string{"login", "sync", "calendar", "mark", "rotation", "salary"} {
		assert.True(t, strings.Contains(out, name), name)
	}
}

// --- cache ---

func TestCacheCmd_ListsEntries(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Local cache is empty.")

	env.login(t)
	out, err = executeCmd(t, env.app, "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, store.KeySession)
}
