// Package gateway is the single path every backend call takes. It attaches the session's
// bearer token, refreshes the session when it is about to expire or the server rejects it,
// retries a rejected call exactly once, and sends the user to the login route when the
// session cannot be recovered.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/Jaemnie/sellog/token"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 15 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	defaultLoginRoute     = "/login"
)

type Gateway struct {
	baseURL        string
	client         *http.Client
	store          *token.Store
	navigator      Navigator
	limiter        *rate.Limiter
	logger         zerolog.Logger
	loginRoute     string
	threshold      time.Duration
	refreshTimeout time.Duration

	refreshGroup singleflight.Group
}

type Option func(*Gateway)

// WithHTTPClient replaces the default client. A cookie jar is added when c has none, since
// the refresh credential travels as a cookie.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		cc := *c
		if cc.Jar == nil {
			cc.Jar = g.client.Jar
		}
		g.client = &cc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.client.Timeout = d }
}

func WithNavigator(n Navigator) Option {
	return func(g *Gateway) { g.navigator = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

func WithLoginRoute(route string) Option {
	return func(g *Gateway) { g.loginRoute = route }
}

// WithRefreshThreshold sets how close to expiry a token must be before mutating calls
// refresh it up front.
func WithRefreshThreshold(d time.Duration) Option {
	return func(g *Gateway) { g.threshold = d }
}

func WithRefreshTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.refreshTimeout = d }
}

// WithRateLimit throttles outgoing calls. A non-positive limit disables throttling.
func WithRateLimit(limit float64, burst int) Option {
	return func(g *Gateway) {
		if limit <= 0 {
			g.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

func New(baseURL string, store *token.Store, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[Gateway New] %w: base URL %q", ErrInvalidRequest, baseURL)
	}
	if store == nil {
		return nil, fmt.Errorf("[Gateway New] %w: token store is required", ErrInvalidRequest)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("[Gateway New] cookie jar: %w", err)
	}

	g := &Gateway{
		baseURL:        u.Scheme + "://" + u.Host + trimSlash(u.Path),
		client:         &http.Client{Jar: jar, Timeout: defaultTimeout},
		store:          store,
		navigator:      logNavigator{},
		logger:         log.Logger,
		loginRoute:     defaultLoginRoute,
		threshold:      token.DefaultExpiryThreshold,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Store returns the token store the gateway reads and refreshes.
func (g *Gateway) Store() *token.Store {
	return g.store
}

// phase is where a call is in its lifecycle. Only phaseSending may move to phaseRefreshing,
// which is what limits every call to a single retry.
type phase int

const (
	phaseSending phase = iota
	phaseRefreshing
	phaseRetrying
)

// Do sends req and returns the response of a 2xx reply. A 401 triggers one refresh and one
// retry; everything else non-2xx comes back as *HTTPError, transport failures as
// *NetworkError.
func (g *Gateway) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.Method == "" || req.Path == "" {
		return nil, fmt.Errorf("[Gateway Do] %w: method and path are required", ErrInvalidRequest)
	}

	requestID := uuid.NewString()
	logger := g.logger.With().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("endpoint", req.Path).
		Logger()

	if err := g.preflight(ctx, req, logger); err != nil {
		return nil, err
	}

	var rejected string
	p := phaseSending
	for {
		switch p {
		case phaseSending, phaseRetrying:
			tok := g.store.Token(ctx)
			resp, err := g.send(ctx, req, tok, requestID)
			if err != nil {
				logger.Err(err).Msg("request failed")
				return nil, err
			}
			if resp.Status == http.StatusUnauthorized && p == phaseSending && !isAuthEndpoint(req.Path) {
				rejected = tok
				p = phaseRefreshing
				continue
			}
			return g.finish(req, resp, logger)

		case phaseRefreshing:
			logger.Debug().Msg("unauthorized, refreshing session")
			if g.refreshFrom(ctx, rejected) {
				p = phaseRetrying
				continue
			}
			g.expire(ctx, logger)
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrRefreshFailed)
		}
	}
}

// preflight refreshes an expiring session before a mutating call so the call itself does
// not race the expiry. Logout is exempt: the session is about to end anyway.
func (g *Gateway) preflight(ctx context.Context, req *Request, logger zerolog.Logger) error {
	if !isMutating(req.Method) || req.Path == logoutPath {
		return nil
	}
	tok := g.store.Token(ctx)
	if tok == "" {
		return nil
	}
	if _, known := token.ExpirationTime(tok); !known {
		return nil
	}
	if !token.IsExpiringSoon(tok, g.threshold) {
		return nil
	}

	logger.Debug().Bool("expired", token.IsExpired(tok)).Msg("session expiring, refreshing before send")
	if g.refreshFrom(ctx, tok) || isAuthEndpoint(req.Path) {
		return nil
	}
	g.expire(ctx, logger)
	return fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrAuthRequired)
}

func (g *Gateway) finish(req *Request, resp *Response, logger zerolog.Logger) (*Response, error) {
	if resp.Status >= 200 && resp.Status < 300 {
		return resp, nil
	}
	logger.Warn().Int("status", resp.Status).Msg("request rejected")
	return nil, &HTTPError{
		Status:   resp.Status,
		Method:   req.Method,
		Endpoint: req.Path,
		Body:     resp.Body,
	}
}

func (g *Gateway) send(ctx context.Context, req *Request, tok, requestID string) (*Response, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Method: req.Method, Endpoint: req.Path, Err: err}
		}
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method, g.url(req), body)
	if err != nil {
		return nil, fmt.Errorf("[Gateway send] %w: %v", ErrInvalidRequest, err)
	}

	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "application/json")
	hr.Header.Set(HeaderRequestID, requestID)
	if tok != "" {
		hr.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, vs := range req.Header {
		hr.Header.Del(k)
		for _, v := range vs {
			hr.Header.Add(k, v)
		}
	}

	res, err := g.client.Do(hr)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, Endpoint: req.Path, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, Endpoint: req.Path, Err: err}
	}
	return &Response{
		Status:    res.StatusCode,
		Header:    res.Header,
		Body:      data,
		RequestID: requestID,
	}, nil
}

func (g *Gateway) url(req *Request) string {
	u := g.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func trimSlash(p string) string {
	for len(p) > 0 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}
