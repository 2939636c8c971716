package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/internal/repository/memory"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore mimics the upsert semantics of the durable repository.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*store.Session
	now     func() time.Time
	failGet error
	deletes int
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{records: map[string]*store.Session{}, now: now}
}

func (f *fakeStore) Get(_ context.Context, userID string) (*store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	return f.records[userID].Clone(), nil
}

func (f *fakeStore) CreateOrUpdate(_ context.Context, userID, apiURL string, meta store.SessionMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[userID]
	if !ok || rec.APIURL != apiURL {
		rec = &store.Session{UserID: userID, APIURL: apiURL, EnteredAt: f.now()}
	}
	rec.Meta = meta
	f.records[userID] = rec
	return nil
}

func (f *fakeStore) Delete(_ context.Context, userID, apiURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[userID]; ok && rec.APIURL == apiURL {
		delete(f.records, userID)
		f.deletes++
	}
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager() (*Manager, *fakeStore, *memory.SessionMirror, *clock) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	st := newFakeStore(c.now)
	mirror := memory.NewSessionMirror()
	return NewManager(st, mirror, 2*time.Hour, logger.NewNopLogger()), st, mirror, c
}

func TestCurrentInNormalMode(t *testing.T) {
	m, _, _, _ := newTestManager()

	sess, err := m.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestEnterAndExit(t *testing.T) {
	m, st, mirror, _ := newTestManager()
	ctx := context.Background()

	sess, err := m.Enter(ctx, "u1", "https://api.github.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", sess.APIURL)

	_, inMirror := mirror.Get("u1")
	assert.True(t, inMirror)

	require.NoError(t, m.Exit(ctx, "u1", sess.APIURL))

	rec, _ := st.Get(ctx, "u1")
	assert.Nil(t, rec)
	_, inMirror = mirror.Get("u1")
	assert.False(t, inMirror)
}

func TestEphemeralFieldsSurviveWithinModeLifetime(t *testing.T) {
	m, _, _, _ := newTestManager()
	ctx := context.Background()

	_, err := m.Enter(ctx, "u1", "https://api.github.com/")
	require.NoError(t, err)
	m.SetCurrentEndpoint("u1", "/users")
	m.SetFavorite("u1", "fav-1")

	sess, err := m.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "/users", sess.CurrentEndpoint)
	assert.Equal(t, "fav-1", sess.FavoriteID)
}

func TestMirrorRebuiltWhenStoreDisagrees(t *testing.T) {
	m, st, mirror, c := newTestManager()
	ctx := context.Background()

	_, err := m.Enter(ctx, "u1", "https://api.github.com/")
	require.NoError(t, err)
	m.SetFavorite("u1", "fav-1")

	// Another process switched the user to a different API.
	c.t = c.t.Add(time.Minute)
	require.NoError(t, st.CreateOrUpdate(ctx, "u1", "https://jsonplaceholder.typicode.com/", store.SessionMeta{}))

	sess, err := m.RefreshMirror(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://jsonplaceholder.typicode.com/", sess.APIURL)
	assert.Empty(t, sess.FavoriteID)

	cached, _ := mirror.Get("u1")
	assert.Equal(t, "https://jsonplaceholder.typicode.com/", cached.APIURL)
}

func TestModeDerivedFromStoreAfterRestart(t *testing.T) {
	m, st, _, _ := newTestManager()
	ctx := context.Background()
	_, err := m.Enter(ctx, "u1", "https://api.github.com/")
	require.NoError(t, err)

	restarted := NewManager(st, memory.NewSessionMirror(), 2*time.Hour, logger.NewNopLogger())
	sess, err := restarted.Current(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "https://api.github.com/", sess.APIURL)
}

func TestStoreFailureIsTagged(t *testing.T) {
	m, st, _, _ := newTestManager()
	st.failGet = errors.New("connection reset")

	_, err := m.Current(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrSessionStore)
}

func TestRecordKeepsEphemeralFields(t *testing.T) {
	m, st, _, _ := newTestManager()
	ctx := context.Background()

	sess, err := m.Enter(ctx, "u1", "https://api.github.com/")
	require.NoError(t, err)
	m.SetFavorite("u1", "fav-1")

	require.NoError(t, m.Record(ctx, sess, store.SessionMeta{ExploredEndpoints: []string{"/users"}}))

	rec, _ := st.Get(ctx, "u1")
	assert.Equal(t, []string{"/users"}, rec.Meta.ExploredEndpoints)

	current, _ := m.Current(ctx, "u1")
	assert.Equal(t, "fav-1", current.FavoriteID)
}

func TestSweepEvictsStaleMirrorOnly(t *testing.T) {
	m, st, mirror, c := newTestManager()
	ctx := context.Background()

	_, err := m.Enter(ctx, "old", "https://api.github.com/")
	require.NoError(t, err)

	c.t = c.t.Add(2*time.Hour + 50*time.Minute)
	_, err = m.Enter(ctx, "fresh", "https://jsonplaceholder.typicode.com/")
	require.NoError(t, err)

	// "old" entered 3 hours before the sweep.
	evicted := m.Sweep(c.t.Add(10 * time.Minute))
	assert.Equal(t, 1, evicted)

	_, oldCached := mirror.Get("old")
	assert.False(t, oldCached)
	_, freshCached := mirror.Get("fresh")
	assert.True(t, freshCached)

	rec, _ := st.Get(ctx, "old")
	require.NotNil(t, rec)
	assert.Zero(t, st.deletes)
}

func TestSweepBoundary(t *testing.T) {
	m, _, mirror, c := newTestManager()
	_, err := m.Enter(context.Background(), "u1", "https://api.github.com/")
	require.NoError(t, err)

	assert.Zero(t, m.Sweep(c.t.Add(2*time.Hour-time.Second)))
	assert.Equal(t, 1, m.Sweep(c.t.Add(2*time.Hour)))
	assert.Empty(t, mirror.Snapshot())
}

func TestSweeperStartStop(t *testing.T) {
	m, _, mirror, c := newTestManager()
	_, err := m.Enter(context.Background(), "u1", "https://api.github.com/")
	require.NoError(t, err)

	s := NewSweeper(m, 5*time.Millisecond, logger.NewNopLogger())
	s.now = func() time.Time { return c.t.Add(3 * time.Hour) }

	s.Start(context.Background())
	s.Start(context.Background())

	assert.Eventually(t, func() bool {
		return len(mirror.Snapshot()) == 0
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
}
