package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/Jaemnie/sellog/api"
	"github.com/Jaemnie/sellog/authstate"
	"github.com/Jaemnie/sellog/broadcast"
	"github.com/Jaemnie/sellog/gateway"
	"github.com/Jaemnie/sellog/guard"
	"github.com/Jaemnie/sellog/internal/config"
	"github.com/Jaemnie/sellog/token"
	"github.com/Jaemnie/sellog/token/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const homeRoute = "/home"

// app is one client session: the equivalent of a browser tab.
type app struct {
	cfg     config.Config
	printer *Printer

	rdb         redis.UniversalClient
	broadcaster *broadcast.Broadcaster
	store       *token.Store
	gw          *gateway.Gateway
	client      *api.Client
	state       *authstate.State
	nav         *routeNavigator

	stopRelay context.CancelFunc
	relayDone chan struct{}
}

func newApp(ctx context.Context, cfg config.Config, p *Printer) (*app, error) {
	a := &app{
		cfg:         cfg,
		printer:     p,
		broadcaster: broadcast.New(),
		nav:         &routeNavigator{path: homeRoute, printer: p},
	}

	backend, err := a.sessionBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.store = token.NewStore(backend, a.broadcaster,
		token.WithKey(cfg.GetStorageKey()),
		token.WithTTL(cfg.GetSessionTTL()),
	)

	a.gw, err = gateway.New(cfg.GetAPIBaseURL(), a.store,
		gateway.WithNavigator(a.nav),
		gateway.WithLoginRoute(cfg.GetLoginRoute()),
		gateway.WithTimeout(cfg.GetRequestTimeout()),
		gateway.WithRefreshThreshold(cfg.GetRefreshThreshold()),
		gateway.WithRefreshTimeout(cfg.GetRefreshTimeout()),
		gateway.WithRateLimit(cfg.GetRateLimit(), cfg.GetRateBurst()),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	a.client = api.New(a.gw)
	a.state = authstate.New(ctx, a.store, a.broadcaster, a.gw,
		authstate.WithDebounce(cfg.GetActivityDebounce()),
	)
	return a, nil
}

// sessionBackend picks where the access token lives. With Redis the session is shared by
// every client on the same key, and changes are relayed between them.
func (a *app) sessionBackend(ctx context.Context) (token.Backend, error) {
	if a.cfg.GetStoreBackend() != config.StoreRedis {
		return token.NewMemoryBackend(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.GetRedisAddr(),
		Password: a.cfg.GetRedisPassword(),
		DB:       a.cfg.GetRedisDB(),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("[app] redis %s: %w", a.cfg.GetRedisAddr(), err)
	}
	a.rdb = rdb

	relay := broadcast.NewRedisRelay(rdb, a.cfg.GetRedisChannel(), a.broadcaster)
	a.broadcaster.SetRelay(relay)

	relayCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.stopRelay = cancel
	a.relayDone = make(chan struct{})
	go func() {
		defer close(a.relayDone)
		if err := relay.Listen(relayCtx); err != nil {
			log.Err(err).Msg("session relay stopped")
		}
	}()

	return redisstore.New(rdb, a.cfg.GetRedisKeyPrefix()), nil
}

// newGuard returns a guard for one view.
func (a *app) newGuard() *guard.Guard {
	return guard.New(a.nav, guard.NotifierFunc(func(_ context.Context, message string) {
		a.printer.Warning("%s", message)
	}), guard.WithLoginRoute(a.cfg.GetLoginRoute()))
}

func (a *app) close() {
	if a.state != nil {
		a.state.Close()
	}
	if a.stopRelay != nil {
		a.stopRelay()
		<-a.relayDone
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			log.Err(err).Msg("failed to close redis client")
		}
	}
}

// routeNavigator tracks the view the user is on.
type routeNavigator struct {
	mu      sync.Mutex
	path    string
	printer *Printer
}

func (n *routeNavigator) Redirect(_ context.Context, route string) {
	n.mu.Lock()
	changed := n.path != route
	n.path = route
	n.mu.Unlock()

	if changed {
		n.printer.Print("%s", n.printer.Dim("→ "+route))
	}
}

func (n *routeNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}
