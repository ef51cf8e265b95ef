// Package authstate keeps a reactive view of whether the user is logged in. It re-derives the
// view from the token store whenever the session changes, here or in another process, and on
// the passive triggers an interactive client has: focus, visibility and user activity.
package authstate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Jaemnie/sellog/broadcast"
	"github.com/Jaemnie/sellog/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultActivityDebounce = 2 * time.Second

type Snapshot struct {
	IsLoggedIn bool
	IsLoading  bool
}

// Session is the part of the gateway the state drives.
type Session interface {
	RefreshIfExpiring(ctx context.Context) bool
	Logout(ctx context.Context) error
}

// Subscriber delivers session changes.
type Subscriber interface {
	Subscribe(fn func(broadcast.Change)) (unsubscribe func())
}

type State struct {
	ctx      context.Context
	store    *token.Store
	session  Session
	logger   zerolog.Logger
	debounce time.Duration

	// held from reading the store until the snapshot is applied, so a slow read cannot
	// overwrite a newer snapshot
	deriveMu sync.Mutex

	mu          sync.Mutex
	snap        Snapshot
	delivered   Snapshot
	delivering  bool
	watchers    map[uint64]func(Snapshot)
	nextID      uint64
	timer       *time.Timer
	unsubscribe func()
	closed      bool
}

type Option func(*State)

// WithDebounce sets how long activity must pause before the session is checked.
func WithDebounce(d time.Duration) Option {
	return func(s *State) { s.debounce = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *State) { s.logger = l }
}

// New mounts the state: it derives the first snapshot synchronously and starts following
// changes to the store's key. ctx is used for work started by the activity timer.
func New(ctx context.Context, store *token.Store, sub Subscriber, session Session, opts ...Option) *State {
	s := &State{
		ctx:       context.WithoutCancel(ctx),
		store:     store,
		session:   session,
		logger:    log.Logger,
		debounce:  DefaultActivityDebounce,
		snap:      Snapshot{IsLoading: true},
		delivered: Snapshot{IsLoading: true},
		watchers:  make(map[uint64]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.UpdateAuthState(ctx)

	if sub != nil {
		unsubscribe := sub.Subscribe(func(c broadcast.Change) {
			if c.Key != store.Key() {
				return
			}
			s.UpdateAuthState(s.ctx)
		})
		s.mu.Lock()
		s.unsubscribe = unsubscribe
		s.mu.Unlock()
	}
	return s
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// UpdateAuthState re-derives the snapshot from the store and notifies watchers if it changed.
func (s *State) UpdateAuthState(ctx context.Context) {
	s.deriveMu.Lock()
	next := Snapshot{IsLoggedIn: s.store.IsPresent(ctx)}
	s.mu.Lock()
	changed := !s.closed && next != s.snap
	if changed {
		s.snap = next
	}
	s.mu.Unlock()
	s.deriveMu.Unlock()

	if changed {
		s.deliver()
	}
}

// deliver runs the watchers until they have seen the latest snapshot. One goroutine delivers
// at a time, so a watcher never sees an older snapshot after a newer one. A watcher may call
// back into the State.
func (s *State) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for !s.closed && s.delivered != s.snap {
		snap := s.snap
		s.delivered = snap
		watchers := s.watcherList()
		s.mu.Unlock()

		s.logger.Debug().Bool("logged_in", snap.IsLoggedIn).Msg("auth state changed")
		for _, fn := range watchers {
			fn(snap)
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

// Login is called once the login flow has stored a token.
func (s *State) Login(ctx context.Context) {
	s.UpdateAuthState(ctx)
}

// Logout ends the session on the backend if it can, and locally regardless.
func (s *State) Logout(ctx context.Context) error {
	if s.session != nil {
		if err := s.session.Logout(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}
	err := s.store.Clear(ctx)
	s.UpdateAuthState(ctx)
	return err
}

func (s *State) OnFocus(ctx context.Context) {
	s.check(ctx)
}

func (s *State) OnVisibilityChange(ctx context.Context, visible bool) {
	if visible {
		s.check(ctx)
	}
}

// OnActivity records user activity. The session check runs once activity has paused for the
// debounce interval.
func (s *State) OnActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.check(s.ctx) })
}

// Watch calls fn with every new snapshot until cancel is called.
func (s *State) Watch(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// Close stops the activity timer and the change subscription. The state is frozen afterwards.
func (s *State) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *State) check(ctx context.Context) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	if s.session != nil && s.store.IsPresent(ctx) {
		s.session.RefreshIfExpiring(ctx)
	}
	s.UpdateAuthState(ctx)
}

func (s *State) watcherList() []func(Snapshot) {
	ids := make([]uint64, 0, len(s.watchers))
	for id := range s.watchers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.watchers[id])
	}
	return fns
}
