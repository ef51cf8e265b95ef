// Package api wraps the sellog REST endpoints. Every call goes through the gateway, so it
// carries the session and recovers from an expired one on its own.
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Jaemnie/sellog/gateway"
	apperrors "github.com/Jaemnie/sellog/internal/errors"
	"github.com/Jaemnie/sellog/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Void is the payload of endpoints that answer with no data.
type Void = struct{}

type Client struct {
	gw     *gateway.Gateway
	store  *token.Store
	logger zerolog.Logger
}

type Option func(*Client)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(gw *gateway.Gateway, opts ...Option) *Client {
	c := &Client{
		gw:     gw,
		store:  gw.Store(),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUserID returns the user the session belongs to, read from the access token.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	tok := c.store.Token(ctx)
	if tok == "" {
		return "", apperrors.ErrNotLoggedIn
	}
	sub, ok := token.Subject(tok)
	if !ok {
		return "", apperrors.ErrMissingUserID
	}
	return sub, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, query url.Values) (*gateway.Envelope[T], error) {
	req := gateway.NewRequest(method, path)
	if query != nil {
		req.WithQuery(query)
	}
	return gateway.Call[T](ctx, c.gw, req)
}

func callJSON[T any](ctx context.Context, c *Client, method, path string, body any) (*gateway.Envelope[T], error) {
	req, err := gateway.NewJSONRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	return gateway.Call[T](ctx, c.gw, req)
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (*gateway.Envelope[T], error) {
	return call[T](ctx, c, http.MethodGet, path, query)
}

func requireUserID(userID string) error {
	if userID == "" {
		return apperrors.ErrMissingUserID
	}
	return nil
}

func requireID(name, id string) error {
	if id == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s is required", name)
	}
	return nil
}
