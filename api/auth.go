package api

import (
	"context"
	"net/http"

	"github.com/Jaemnie/sellog/gateway"
)

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*gateway.Envelope[gateway.AuthTokens], error) {
	return callJSON[gateway.AuthTokens](ctx, c, http.MethodPost, "/auth/register", req)
}

// Login authenticates and, on success, stores the access token. The refresh token arrives as
// a cookie and stays in the gateway's jar.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*gateway.Envelope[gateway.AuthTokens], error) {
	env, err := callJSON[gateway.AuthTokens](ctx, c, http.MethodPost, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	if env.IsSuccess && env.Payload.AccessToken != "" {
		if err := c.store.Set(ctx, env.Payload.AccessToken); err != nil {
			return nil, err
		}
		c.logger.Info().Str("user_id", env.Payload.UserID).Msg("logged in")
	}
	return env, nil
}

// FindID looks up a user ID by name and email.
func (c *Client) FindID(ctx context.Context, req FindIDRequest) (*gateway.Envelope[string], error) {
	return callJSON[string](ctx, c, http.MethodPost, "/auth/find", req)
}

func (c *Client) ChangePassword(ctx context.Context, req PasswordChangeRequest) (*gateway.Envelope[Void], error) {
	return callJSON[Void](ctx, c, http.MethodPost, "/auth/pwchange", req)
}

func (c *Client) CheckDuplicate(ctx context.Context, userID string) (*gateway.Envelope[DuplicateCheck], error) {
	return callJSON[DuplicateCheck](ctx, c, http.MethodPost, "/auth/checkId", map[string]string{"userId": userID})
}

// Logout ends the session on the backend when it can and always clears it locally.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.gw.Logout(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("backend logout failed")
	}
	return c.store.Clear(ctx)
}
