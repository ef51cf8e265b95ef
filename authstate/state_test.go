package authstate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Jaemnie/sellog/authstate"
	"github.com/Jaemnie/sellog/broadcast"
	"github.com/Jaemnie/sellog/gateway"
	"github.com/Jaemnie/sellog/internal/fakebackend"
	"github.com/Jaemnie/sellog/internal/tokentest"
	"github.com/Jaemnie/sellog/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend     *fakebackend.Backend
	broadcaster *broadcast.Broadcaster
	storage     *token.MemoryBackend
	store       *token.Store
	gw          *gateway.Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		backend:     fakebackend.New(t),
		broadcaster: broadcast.New(),
		storage:     token.NewMemoryBackend(),
	}
	f.store = token.NewStore(f.storage, f.broadcaster)
	gw, err := gateway.New(f.backend.URL(), f.store, gateway.WithNavigator(gateway.NavigatorFunc(func(context.Context, string) {})))
	require.NoError(t, err)
	f.gw = gw
	return f
}

func (f *fixture) mount(t *testing.T, opts ...authstate.Option) *authstate.State {
	t.Helper()

	s := authstate.New(context.Background(), f.store, f.broadcaster, f.gw, opts...)
	t.Cleanup(s.Close)
	return s
}

// login performs a real login so the gateway holds a refresh cookie.
func (f *fixture) login(t *testing.T) {
	t.Helper()

	req, err := gateway.NewJSONRequest("POST", "/auth/login", map[string]string{
		"userId":   fakebackend.DefaultUserID,
		"password": fakebackend.DefaultPassword,
	})
	require.NoError(t, err)
	env, err := gateway.Call[gateway.AuthTokens](context.Background(), f.gw, req)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(context.Background(), env.Payload.AccessToken))
}

type recorder struct {
	mu    sync.Mutex
	snaps []authstate.Snapshot
}

func (r *recorder) record(s authstate.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []authstate.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]authstate.Snapshot(nil), r.snaps...)
}

func TestMountDerivesSnapshot(t *testing.T) {
	f := newFixture(t)
	s := f.mount(t)
	assert.Equal(t, authstate.Snapshot{}, s.Snapshot())

	require.NoError(t, f.store.Set(context.Background(), tokentest.ValidFor("user-1", time.Hour)))
	other := f.mount(t)
	assert.Equal(t, authstate.Snapshot{IsLoggedIn: true}, other.Snapshot())
}

func TestStoreChangesUpdateWatchers(t *testing.T) {
	f := newFixture(t)
	s := f.mount(t)
	rec := &recorder{}
	s.Watch(rec.record)
	ctx := context.Background()

	require.NoError(t, f.store.Set(ctx, tokentest.ValidFor("user-1", time.Hour)))
	assert.True(t, s.Snapshot().IsLoggedIn)

	// replacing the token does not change the snapshot
	require.NoError(t, f.store.Set(ctx, tokentest.ValidFor("user-1", time.Hour)))

	require.NoError(t, f.store.Clear(ctx))
	assert.False(t, s.Snapshot().IsLoggedIn)

	assert.Equal(t, []authstate.Snapshot{{IsLoggedIn: true}, {IsLoggedIn: false}}, rec.all())
}

func TestChangesToOtherKeysAreIgnored(t *testing.T) {
	f := newFixture(t)
	s := f.mount(t)
	rec := &recorder{}
	s.Watch(rec.record)

	require.NoError(t, f.storage.Save(context.Background(), f.store.Key(), "abc", 0))
	f.broadcaster.NotifyChange(context.Background(), broadcast.Change{Key: "theme", Present: true})

	assert.False(t, s.Snapshot().IsLoggedIn)
	assert.Empty(t, rec.all())
}

func TestChangeFromAnotherProcessIsPickedUp(t *testing.T) {
	f := newFixture(t)
	s := f.mount(t)

	// another process writes the shared storage; its relay delivers the change here
	require.NoError(t, f.storage.Save(context.Background(), f.store.Key(), "abc", 0))
	f.broadcaster.Deliver(broadcast.Change{Key: f.store.Key(), Present: true, Origin: "other"})

	assert.True(t, s.Snapshot().IsLoggedIn)
}

func TestWatchCancel(t *testing.T) {
	f := newFixture(t)
	s := f.mount(t)
	rec := &recorder{}
	cancel := s.Watch(rec.record)
	cancel()

	require.NoError(t, f.store.Set(context.Background(), "abc"))
	assert.Empty(t, rec.all())
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.backend.FailLogout(true)
	s := f.mount(t)
	require.True(t, s.Snapshot().IsLoggedIn)

	require.NoError(t, s.Logout(context.Background()))

	assert.Equal(t, 1, f.backend.LogoutCalls())
	assert.False(t, f.store.IsPresent(context.Background()))
	assert.False(t, s.Snapshot().IsLoggedIn)
}

func TestLoginRederives(t *testing.T) {
	f := newFixture(t)
	s := authstate.New(context.Background(), f.store, nil, f.gw)
	defer s.Close()

	require.NoError(t, f.store.Set(context.Background(), "abc"))
	assert.False(t, s.Snapshot().IsLoggedIn)

	s.Login(context.Background())
	assert.True(t, s.Snapshot().IsLoggedIn)
}

func TestFocusRefreshesExpiringSession(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.store.Set(context.Background(), tokentest.ValidFor(fakebackend.DefaultUserID, time.Minute)))
	s := f.mount(t)

	s.OnVisibilityChange(context.Background(), false)
	assert.Zero(t, f.backend.RefreshCalls())

	s.OnFocus(context.Background())
	assert.Equal(t, 1, f.backend.RefreshCalls())
	assert.True(t, s.Snapshot().IsLoggedIn)
}

func TestActivityIsDebounced(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.store.Set(context.Background(), tokentest.ValidFor(fakebackend.DefaultUserID, time.Minute)))
	s := f.mount(t, authstate.WithDebounce(50*time.Millisecond))

	for i := 0; i < 5; i++ {
		s.OnActivity()
		time.Sleep(10 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return f.backend.RefreshCalls() == 1 }, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, f.backend.RefreshCalls())
}

func TestCloseStopsTimerAndSubscription(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.store.Set(context.Background(), tokentest.ValidFor(fakebackend.DefaultUserID, time.Minute)))
	s := f.mount(t, authstate.WithDebounce(20*time.Millisecond))
	rec := &recorder{}
	s.Watch(rec.record)

	s.OnActivity()
	s.Close()
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, f.backend.RefreshCalls())

	require.NoError(t, f.store.Clear(context.Background()))
	assert.True(t, s.Snapshot().IsLoggedIn)
	assert.Empty(t, rec.all())
}

// stallingBackend holds the first Load after arm until release is closed.
type stallingBackend struct {
	*token.MemoryBackend

	mu      sync.Mutex
	armed   bool
	stalled chan struct{}
	release chan struct{}
}

func (b *stallingBackend) arm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.armed = true
}

func (b *stallingBackend) Load(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := b.MemoryBackend.Load(ctx, key)

	b.mu.Lock()
	stall := b.armed
	b.armed = false
	b.mu.Unlock()
	if stall {
		close(b.stalled)
		<-b.release
	}
	return v, ok, err
}

// armingSession stalls the read that follows the refresh check.
type armingSession struct {
	storage *stallingBackend
}

func (s armingSession) RefreshIfExpiring(context.Context) bool {
	s.storage.arm()
	return true
}

func (armingSession) Logout(context.Context) error {
	return nil
}

func TestLogoutWinsOverSlowFocusCheck(t *testing.T) {
	ctx := context.Background()
	storage := &stallingBackend{
		MemoryBackend: token.NewMemoryBackend(),
		stalled:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	b := broadcast.New()
	store := token.NewStore(storage, b)
	require.NoError(t, store.Set(ctx, "abc"))

	s := authstate.New(ctx, store, b, armingSession{storage: storage})
	defer s.Close()
	rec := &recorder{}
	s.Watch(rec.record)

	focusDone := make(chan struct{})
	go func() {
		defer close(focusDone)
		s.OnFocus(ctx)
	}()
	// the focus check has read the token but not applied it yet
	<-storage.stalled

	logoutDone := make(chan error, 1)
	go func() { logoutDone <- s.Logout(ctx) }()
	require.Eventually(t, func() bool {
		_, ok, _ := storage.MemoryBackend.Load(ctx, store.Key())
		return !ok
	}, time.Second, 5*time.Millisecond)
	close(storage.release)

	<-focusDone
	require.NoError(t, <-logoutDone)

	assert.False(t, store.IsPresent(ctx))
	assert.False(t, s.Snapshot().IsLoggedIn)
	snaps := rec.all()
	require.NotEmpty(t, snaps)
	assert.False(t, snaps[len(snaps)-1].IsLoggedIn)
}

func TestWatcherMayCallBackIntoState(t *testing.T) {
	f := newFixture(t)
	s := f.mount(t)
	ctx := context.Background()

	rec := &recorder{}
	s.Watch(func(snap authstate.Snapshot) {
		rec.record(snap)
		if snap.IsLoggedIn {
			s.UpdateAuthState(ctx)
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, f.store.Set(ctx, "abc"))
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher calling UpdateAuthState blocked")
	}
	assert.Equal(t, []authstate.Snapshot{{IsLoggedIn: true}}, rec.all())
}
