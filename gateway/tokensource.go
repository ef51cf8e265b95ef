package gateway

import (
	"context"

	"github.com/Jaemnie/sellog/token"
	"golang.org/x/oauth2"
)

type sessionTokenSource struct {
	ctx context.Context
	g   *Gateway
}

// TokenSource exposes the session as an oauth2.TokenSource, so code built on
// golang.org/x/oauth2 (oauth2.NewClient and friends) shares the gateway's session and its
// refresh logic. An expired session that cannot be refreshed is ended as it is by Do.
func (g *Gateway) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, g: g}
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	tok := s.g.store.Token(s.ctx)
	if tok == "" {
		return nil, ErrNoSession
	}

	if token.IsExpiringSoon(tok, s.g.threshold) {
		if s.g.refreshFrom(s.ctx, tok) {
			tok = s.g.store.Token(s.ctx)
		} else if token.IsExpired(tok) {
			s.g.expire(s.ctx, s.g.logger)
			return nil, ErrRefreshFailed
		}
	}

	t := &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}
	if exp, ok := token.ExpirationTime(tok); ok {
		t.Expiry = exp
	}
	return t, nil
}
