package gateway

import (
	"context"

	"github.com/Jaemnie/sellog/token"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const refreshKey = "session-refresh"

// Refresh asks the backend for a new access token using the refresh cookie. It reports
// success only when a new token has been stored.
func (g *Gateway) Refresh(ctx context.Context) bool {
	return g.refreshFrom(ctx, g.store.Token(ctx))
}

// RefreshIfExpiring is the passive check run on user activity: false when there is no
// usable session, a refresh when the token is close to expiry, true otherwise.
func (g *Gateway) RefreshIfExpiring(ctx context.Context) bool {
	tok := g.store.Token(ctx)
	if tok == "" || token.IsExpired(tok) {
		return false
	}
	if token.IsExpiringSoon(tok, g.threshold) {
		g.logger.Debug().Msg("activity detected, refreshing expiring session")
		return g.refreshFrom(ctx, tok)
	}
	return true
}

// Logout tells the backend to drop the refresh cookie. It does not touch local state.
func (g *Gateway) Logout(ctx context.Context) error {
	_, err := g.Do(ctx, NewRequest("POST", logoutPath))
	return err
}

// refreshFrom coalesces concurrent refreshes into a single backend call. stale is the token
// the caller found unusable; if the store already holds a different token, another caller
// refreshed in the meantime and no call is made.
func (g *Gateway) refreshFrom(ctx context.Context, stale string) bool {
	v, _, shared := g.refreshGroup.Do(refreshKey, func() (interface{}, error) {
		if cur := g.store.Token(ctx); cur != "" && cur != stale {
			return true, nil
		}

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
		defer cancel()
		return g.refresh(rctx), nil
	})
	if shared {
		g.logger.Debug().Msg("joined in-flight session refresh")
	}
	ok, _ := v.(bool)
	return ok
}

func (g *Gateway) refresh(ctx context.Context) bool {
	requestID := uuid.NewString()
	logger := g.logger.With().Str("request_id", requestID).Str("endpoint", refreshPath).Logger()

	resp, err := g.send(ctx, NewRequest("POST", refreshPath), "", requestID)
	if err != nil {
		logger.Err(err).Msg("session refresh failed")
		return false
	}
	if resp.Status < 200 || resp.Status >= 300 {
		logger.Warn().Int("status", resp.Status).Msg("session refresh rejected")
		return false
	}

	env, err := Decode[AuthTokens](resp)
	if err != nil {
		logger.Err(err).Msg("session refresh returned an unreadable body")
		return false
	}
	if !env.IsSuccess || env.Payload.AccessToken == "" {
		logger.Warn().Str("code", env.Code).Msg("session refresh unsuccessful")
		return false
	}

	if err := g.store.Set(ctx, env.Payload.AccessToken); err != nil {
		logger.Err(err).Msg("failed to store refreshed token")
		return false
	}
	logger.Debug().Msg("session refreshed")
	return true
}

// expire ends the local session after an unrecoverable auth failure.
func (g *Gateway) expire(ctx context.Context, logger zerolog.Logger) {
	if err := g.store.Clear(ctx); err != nil {
		logger.Err(err).Msg("failed to clear session")
	}
	g.navigator.Redirect(ctx, g.loginRoute)
}
