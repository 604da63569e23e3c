package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/client/config"
	"github.com/dmitrijs2005/securepay/internal/client/repositories/goals"
	"github.com/dmitrijs2005/securepay/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/securepay/internal/client/services"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/money"
	"github.com/dmitrijs2005/securepay/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// memStore is a RemoteStore keeping rows per table.
type memStore struct {
	mu     sync.Mutex
	rows   map[string][]records.Row
	nextID int
}

func (m *memStore) Query(_ context.Context, table, ownerID string) ([]records.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []records.Row
	for _, r := range m.rows[table] {
		if r["user_id"] == ownerID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, table string, row records.Row) (records.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := row.Clone()
	if _, ok := stored["id"]; !ok {
		m.nextID++
		stored["id"] = fmt.Sprintf("r%d", m.nextID)
	}
	stored["created_at"] = "2026-05-10T12:00:00Z"
	for i, r := range m.rows[table] {
		if r["id"] == stored["id"] {
			m.rows[table][i] = stored
			return stored.Clone(), nil
		}
	}
	m.rows[table] = append(m.rows[table], stored)
	return stored.Clone(), nil
}

func (m *memStore) Delete(_ context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows[table] {
		if r["id"] == id {
			m.rows[table] = append(m.rows[table][:i], m.rows[table][i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

type nopFeed struct{}

func (nopFeed) Subscribe(ctx context.Context, _, _ string, _ func()) (*client.Subscription, error) {
	return client.NewSubscription(ctx, func(ctx context.Context) { <-ctx.Done() }), nil
}

type fakeSession struct {
	onSession func(client.SessionState)
	pingErr   error
}

func (f *fakeSession) Register(_ context.Context, email, _, _ string) (*client.User, error) {
	return &client.User{ID: "u1", Email: email}, nil
}
func (f *fakeSession) Login(_ context.Context, email, password string) (*client.User, error) {
	if password != "secret" {
		return nil, client.ErrUnauthorized
	}
	f.onSession(client.SessionState{UserID: "u1", Email: email, RefreshToken: "r1"})
	return &client.User{ID: "u1", Email: email}, nil
}
func (f *fakeSession) Resume(context.Context, client.SessionState) (*client.User, error) {
	return nil, client.ErrUnauthorized
}
func (f *fakeSession) Logout()                                      {}
func (f *fakeSession) Ping(context.Context) error                   { return f.pingErr }
func (f *fakeSession) OnSessionChange(fn func(client.SessionState)) { f.onSession = fn }

type noAvatars struct{}

func (noAvatars) AvatarUploadURL(context.Context) (string, error) { return "", client.ErrUnavailable }
func (noAvatars) AvatarURL(context.Context) (string, error)       { return "", client.ErrNotFound }

type testApp struct {
	*App
	out     *bytes.Buffer
	store   *memStore
	session *fakeSession
	db      *sql.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "securepay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := &memStore{rows: map[string][]records.Row{}}
	identity := client.NewIdentity()
	backend := client.Backend{Store: store, Feed: nopFeed{}, Identity: identity}
	session := &fakeSession{}
	logger := logging.NewNop()
	out := &bytes.Buffer{}

	app := &App{
		config:    &config.Config{OnlineCheckInterval: 10 * time.Millisecond, RequestTimeout: time.Second},
		logger:    logger,
		db:        db,
		auth:      services.NewAuthService(session, identity, metadata.NewSQLiteRepository(db), logger),
		txs:       services.NewTransactionService(backend, logger, time.Second),
		schedules: services.NewScheduleService(backend, logger, time.Second),
		goals:     services.NewGoalService(goals.NewSQLiteRepository(db)),
		profile:   services.NewProfileService(backend, noAvatars{}),
		format:    money.NewFormatter(language.English),
		out:       out,
	}
	return &testApp{App: app, out: out, store: store, session: session, db: db}
}

// answer stubs the prompts with the given answers in order.
func answer(t *testing.T, answers ...string) {
	t.Helper()
	origText, origInt, origPw := getSimpleText, getInt, getPassword
	t.Cleanup(func() { getSimpleText, getInt, getPassword = origText, origInt, origPw })

	next := func() string {
		require.NotEmpty(t, answers, "unexpected prompt")
		a := answers[0]
		answers = answers[1:]
		return a
	}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next(), nil }
	getPassword = func(io.Writer) (string, error) { return next(), nil }
	getInt = func(_ *bufio.Reader, _ string, def int, _ io.Writer) (int, error) {
		s := next()
		if s == "" {
			return def, nil
		}
		var n int
		_, err := fmt.Sscan(s, &n)
		return n, err
	}
}

func (ta *testApp) login(t *testing.T) {
	t.Helper()
	answer(t, "alice@example.com", "secret")
	require.NoError(t, ta.Login(context.Background()))
}

func TestApp_LoginLogout(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	answer(t, "alice@example.com", "wrong")
	assert.ErrorIs(t, ta.Login(ctx), client.ErrUnauthorized)
	assert.False(t, ta.isLoggedIn())

	ta.login(t)
	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, "(alice@example.com online)", ta.getStatus())
	assert.Contains(t, ta.out.String(), "Signed in as alice@example.com")

	require.NoError(t, ta.Whoami(ctx))
	assert.Contains(t, ta.out.String(), "alice@example.com (u1)")

	require.NoError(t, ta.Logout(ctx))
	assert.False(t, ta.isLoggedIn())
	assert.Equal(t, "(online)", ta.getStatus())
}

func TestApp_Register(t *testing.T) {
	ta := newTestApp(t)
	answer(t, "bob@example.com", "secret", "Bob")

	require.NoError(t, ta.Register(context.Background()))
	assert.True(t, ta.isLoggedIn())
	assert.Contains(t, ta.out.String(), "Welcome, bob@example.com!")
}

func TestApp_Transactions(t *testing.T) {
	ta := newTestApp(t)
	ta.login(t)
	ctx := context.Background()

	require.NoError(t, ta.ListTransactions(ctx))
	assert.Contains(t, ta.out.String(), "No transactions yet")

	answer(t, "Cafe", "50.005", "", "Food", "")
	require.NoError(t, ta.AddTransaction(ctx))
	assert.Contains(t, ta.out.String(), "Saved r1")

	answer(t, "Cafe", "-1", "", "", "")
	assert.ErrorIs(t, ta.AddTransaction(ctx), common.ErrValidation)

	ta.out.Reset()
	require.NoError(t, ta.ListTransactions(ctx))
	assert.Contains(t, ta.out.String(), "Cafe")
	assert.Regexp(t, `-\S* ?50\.01`, ta.out.String())

	ta.out.Reset()
	require.NoError(t, ta.Insights(ctx))
	assert.Contains(t, ta.out.String(), "Transactions: 1")

	require.NoError(t, ta.DeleteTransaction(ctx, "r1"))
	assert.Empty(t, ta.txs.Snapshot())
	assert.ErrorIs(t, ta.DeleteTransaction(ctx, "r1"), client.ErrNotFound)
}

func TestApp_Schedules(t *testing.T) {
	ta := newTestApp(t)
	ta.login(t)
	ctx := context.Background()

	answer(t, "Landlord", "1200", "", "monthly", "5", "", "", "")
	require.NoError(t, ta.AddSchedule(ctx))
	assert.Contains(t, ta.out.String(), "Scheduled r1: Every month (day 5)")

	// empty answers keep the previous values
	answer(t, "", "1300", "", "", "", "2026-06-05", "", "")
	require.NoError(t, ta.EditSchedule(ctx, "r1"))
	assert.Contains(t, ta.out.String(), "Updated r1: Every month (day 5)")

	s, ok := ta.schedules.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "Landlord", s.Payee)
	assert.Equal(t, "1300.00", s.Amount.String())
	require.NotNil(t, s.NextRun)

	ta.out.Reset()
	require.NoError(t, ta.ListSchedules(ctx))
	assert.Contains(t, ta.out.String(), "2026-06-05")

	assert.Error(t, ta.EditSchedule(ctx, "nope"))
	require.NoError(t, ta.DeleteSchedule(ctx, "r1"))
}

func TestApp_Goals(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	answer(t, "1500", "300", "3", "months")
	require.NoError(t, ta.Calculate(ctx))
	assert.Regexp(t, `Per month:\s+\S* ?400\.00`, ta.out.String())
	assert.Contains(t, ta.out.String(), "Progress:   20%")

	answer(t, "Bike", "1500", "", "3", "", "", "")
	require.NoError(t, ta.AddGoal(ctx))

	ta.out.Reset()
	require.NoError(t, ta.ListGoals(ctx))
	assert.Contains(t, ta.out.String(), "Bike")

	list, err := ta.goals.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, ta.DeleteGoal(ctx, list[0].ID))
	assert.ErrorIs(t, ta.DeleteGoal(ctx, list[0].ID), common.ErrorNotFound)
}

func TestApp_Profile(t *testing.T) {
	ta := newTestApp(t)
	ta.login(t)
	ctx := context.Background()

	answer(t, "Alice A.", "", "+1 555", "")
	require.NoError(t, ta.EditProfile(ctx))

	ta.store.mu.Lock()
	row := ta.store.rows[common.TableProfiles][0]
	ta.store.mu.Unlock()
	assert.Equal(t, "Alice A.", row["full_name"])
	_, hasDisplay := row["display_name"]
	assert.False(t, hasDisplay)

	// the fake store does not stamp user_id, so Get falls back to the email
	require.NoError(t, ta.ShowProfile(ctx))
	assert.Contains(t, ta.out.String(), "Email:        alice@example.com")

	assert.ErrorIs(t, ta.DownloadAvatar(ctx, filepath.Join(t.TempDir(), "a.png")), client.ErrNotFound)
}

func TestApp_OnlineStatusWatcher(t *testing.T) {
	ta := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ta.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return ta.getMode() == ModeOnline }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	ta.setMode(ModeOffline)
	assert.Equal(t, "(offline)", ta.getStatus())
}

func TestApp_OnlineStatusWatcher_ZeroInterval(t *testing.T) {
	ta := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ta.StartOnlineStatusWatcher(ctx, 0)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
