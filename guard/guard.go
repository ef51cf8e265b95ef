// Package guard protects views that need a session. It decides whether a view may render and
// sends a logged-out user to the login route exactly once per loss of the session.
package guard

import (
	"context"
	"strings"
	"sync"

	"github.com/Jaemnie/sellog/authstate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLoginRoute = "/login"

	LoginRequiredMessage  = "This page requires you to log in."
	ActionRequiresMessage = "You need to log in to do that."
)

// DefaultAuthRoutes are the views a logged-out user is expected to be on. No login notice
// is shown there.
var DefaultAuthRoutes = []string{"/login", "/signup", "/find-id", "/forgot-password"}

type Status int

const (
	StatusLoading Status = iota
	StatusAuthorized
	StatusUnauthorized
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthorized:
		return "authorized"
	case StatusUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Decision is the outcome of one evaluation.
type Decision struct {
	Status     Status
	Render     bool
	Redirected bool
	Notified   bool
}

type Navigator interface {
	Redirect(ctx context.Context, route string)
}

type Notifier interface {
	Notify(ctx context.Context, message string)
}

type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}

// Source is a reactive auth state, normally *authstate.State.
type Source interface {
	Snapshot() authstate.Snapshot
	Watch(fn func(authstate.Snapshot)) (cancel func())
}

type Guard struct {
	navigator  Navigator
	notifier   Notifier
	loginRoute string
	authRoutes []string
	logger     zerolog.Logger

	mu         sync.Mutex
	redirected bool
}

type Option func(*Guard)

func WithLoginRoute(route string) Option {
	return func(g *Guard) { g.loginRoute = route }
}

func WithAuthRoutes(routes ...string) Option {
	return func(g *Guard) { g.authRoutes = routes }
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

func New(navigator Navigator, notifier Notifier, opts ...Option) *Guard {
	g := &Guard{
		navigator:  navigator,
		notifier:   notifier,
		loginRoute: DefaultLoginRoute,
		authRoutes: DefaultAuthRoutes,
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate decides what the view at currentPath does with snap. The redirect and the notice
// fire on the first unauthorized evaluation only and are re-armed once the user is
// authorized again.
func (g *Guard) Evaluate(ctx context.Context, snap authstate.Snapshot, currentPath string) Decision {
	if snap.IsLoading {
		return Decision{Status: StatusLoading}
	}

	g.mu.Lock()
	if snap.IsLoggedIn {
		g.redirected = false
		g.mu.Unlock()
		return Decision{Status: StatusAuthorized, Render: true}
	}
	first := !g.redirected
	g.redirected = true
	g.mu.Unlock()

	d := Decision{Status: StatusUnauthorized}
	if !first {
		return d
	}

	if !g.IsAuthRoute(currentPath) {
		g.notify(ctx, LoginRequiredMessage)
		d.Notified = true
	}
	g.logger.Debug().Str("from", currentPath).Str("to", g.loginRoute).Msg("redirecting to login")
	if g.navigator != nil {
		g.navigator.Redirect(ctx, g.loginRoute)
	}
	d.Redirected = true
	return d
}

// Bind evaluates the current snapshot and every later one. currentPath is read at each
// evaluation. onDecision may be nil.
func (g *Guard) Bind(ctx context.Context, src Source, currentPath func() string, onDecision func(Decision)) (cancel func()) {
	eval := func(snap authstate.Snapshot) {
		d := g.Evaluate(ctx, snap, currentPath())
		if onDecision != nil {
			onDecision(d)
		}
	}
	cancel = src.Watch(eval)
	eval(src.Snapshot())
	return cancel
}

// RequireAction runs action when the user is logged in. Otherwise it shows a login prompt
// with message, or ActionRequiresMessage when message is empty, and reports false.
func (g *Guard) RequireAction(ctx context.Context, snap authstate.Snapshot, action func(), message string) bool {
	if snap.IsLoggedIn {
		action()
		return true
	}
	if message == "" {
		message = ActionRequiresMessage
	}
	g.notify(ctx, message)
	return false
}

func (g *Guard) notify(ctx context.Context, message string) {
	if g.notifier == nil {
		g.logger.Info().Msg(message)
		return
	}
	g.notifier.Notify(ctx, message)
}

// IsAuthRoute reports whether path is one of the views a logged-out user may be on.
func (g *Guard) IsAuthRoute(path string) bool {
	path = strings.TrimRight(path, "/")
	if path == g.loginRoute {
		return true
	}
	for _, r := range g.authRoutes {
		if path == r {
			return true
		}
	}
	return false
}
