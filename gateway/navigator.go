package gateway

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Navigator moves the user to another view, typically the login route after the session
// is lost.
type Navigator interface {
	Redirect(ctx context.Context, route string)
}

type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Redirect(ctx context.Context, route string) {
	f(ctx, route)
}

type logNavigator struct{}

func (logNavigator) Redirect(_ context.Context, route string) {
	log.Info().Str("route", route).Msg("redirect requested")
}
