// Package fakebackend is an in-process stand-in for the sellog REST backend. It issues real
// signed access tokens, keeps refresh sessions in an httpOnly cookie and counts the calls
// tests care about.
package fakebackend

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jaemnie/sellog/internal/tokentest"
	"github.com/google/uuid"
)

const (
	RefreshCookie = "refreshToken"

	DefaultUserID   = "user-1"
	DefaultPassword = "password123"
)

// HandlerFunc serves a route. userID is the authenticated caller, empty on /auth/ routes.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, userID string)

// Recorded is a request as the backend saw it.
type Recorded struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string
	ContentType   string
	Body          []byte
}

type Backend struct {
	server *httptest.Server

	mu           sync.Mutex
	users        map[string]string
	sessions     map[string]string // refresh cookie -> user ID
	revoked      map[string]bool
	handlers     map[string]HandlerFunc
	requests     []Recorded
	tokenTTL     time.Duration
	refreshDelay time.Duration
	failRefresh  bool
	failLogout   bool
	refreshCalls int
	logoutCalls  int
	loginCalls   int
}

// New starts a backend with a single user (DefaultUserID / DefaultPassword). The server is
// closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		users:    map[string]string{DefaultUserID: DefaultPassword},
		sessions: make(map[string]string),
		revoked:  make(map[string]bool),
		handlers: make(map[string]HandlerFunc),
		tokenTTL: 30 * time.Minute,
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

// Client returns an http.Client that talks to the backend. It has no cookie jar.
func (b *Backend) Client() *http.Client {
	return b.server.Client()
}

func (b *Backend) AddUser(userID, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[userID] = password
}

// SetTokenTTL sets the lifetime of access tokens issued from now on.
func (b *Backend) SetTokenTTL(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenTTL = d
}

func (b *Backend) SetRefreshDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshDelay = d
}

// FailRefresh makes /auth/refresh answer 401.
func (b *Backend) FailRefresh(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failRefresh = fail
}

// FailLogout makes /auth/logout answer 500.
func (b *Backend) FailLogout(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failLogout = fail
}

// Revoke rejects tok on protected routes even though it is still within its lifetime.
func (b *Backend) Revoke(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[tok] = true
}

// Handle registers a route. Routes outside /auth/ require a valid bearer token.
func (b *Backend) Handle(method, path string, h HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[strings.ToUpper(method)+" "+path] = h
}

func (b *Backend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

func (b *Backend) LogoutCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logoutCalls
}

func (b *Backend) LoginCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loginCalls
}

// Requests returns every request received so far, in arrival order.
func (b *Backend) Requests() []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Recorded(nil), b.requests...)
}

// RequestsTo filters Requests by path.
func (b *Backend) RequestsTo(path string) []Recorded {
	var out []Recorded
	for _, r := range b.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// IssueToken mints an access token for userID with the current token lifetime.
func (b *Backend) IssueToken(userID string) string {
	b.mu.Lock()
	ttl := b.tokenTTL
	b.mu.Unlock()
	return tokentest.ValidFor(userID, ttl)
}

// WriteEnvelope writes a success envelope around payload.
func WriteEnvelope(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, map[string]any{
		"isSuccess": true,
		"code":      "COMMON200",
		"message":   "OK",
		"payload":   payload,
	})
}

// WriteFailure writes an isSuccess:false envelope.
func WriteFailure(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"isSuccess": false,
		"code":      code,
		"message":   message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	b.mu.Lock()
	b.requests = append(b.requests, Recorded{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	h, custom := b.handlers[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/auth/") {
		if custom {
			h(w, r, "")
			return
		}
		b.serveAuth(w, r)
		return
	}

	userID, ok := b.authenticate(r)
	if !ok {
		WriteFailure(w, http.StatusUnauthorized, "AUTH401", "unauthorized")
		return
	}
	if custom {
		h(w, r, userID)
		return
	}
	WriteEnvelope(w, http.StatusOK, map[string]string{"userId": userID, "path": r.URL.Path})
}

func (b *Backend) authenticate(r *http.Request) (string, bool) {
	tok, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || tok == "" {
		return "", false
	}

	b.mu.Lock()
	revoked := b.revoked[tok]
	b.mu.Unlock()
	if revoked {
		return "", false
	}

	userID, err := tokentest.Verify(tok)
	if err != nil {
		return "", false
	}
	return userID, true
}

func (b *Backend) serveAuth(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		b.login(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/refresh":
		b.refresh(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/logout":
		b.logout(w, r)
	default:
		WriteEnvelope(w, http.StatusOK, nil)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		UserID   string `json:"userId"`
		Password string `json:"password"`
	}
	b.mu.Lock()
	b.loginCalls++
	b.mu.Unlock()

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		WriteFailure(w, http.StatusBadRequest, "COMMON400", "malformed body")
		return
	}

	b.mu.Lock()
	pw, ok := b.users[creds.UserID]
	b.mu.Unlock()
	if !ok || pw != creds.Password {
		WriteFailure(w, http.StatusUnauthorized, "AUTH001", "invalid credentials")
		return
	}

	session := uuid.NewString()
	b.mu.Lock()
	b.sessions[session] = creds.UserID
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    session,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	WriteEnvelope(w, http.StatusOK, map[string]string{
		"accessToken": b.IssueToken(creds.UserID),
		"userId":      creds.UserID,
	})
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	delay := b.refreshDelay
	fail := b.failRefresh
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		WriteFailure(w, http.StatusUnauthorized, "AUTH402", "refresh token expired")
		return
	}

	c, err := r.Cookie(RefreshCookie)
	if err != nil {
		WriteFailure(w, http.StatusUnauthorized, "AUTH403", "missing refresh token")
		return
	}
	b.mu.Lock()
	userID, ok := b.sessions[c.Value]
	b.mu.Unlock()
	if !ok {
		WriteFailure(w, http.StatusUnauthorized, "AUTH403", "unknown refresh token")
		return
	}

	WriteEnvelope(w, http.StatusOK, map[string]string{"accessToken": b.IssueToken(userID)})
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.logoutCalls++
	fail := b.failLogout
	b.mu.Unlock()

	if fail {
		WriteFailure(w, http.StatusInternalServerError, "COMMON500", "logout failed")
		return
	}
	if c, err := r.Cookie(RefreshCookie); err == nil {
		b.mu.Lock()
		delete(b.sessions, c.Value)
		b.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	WriteEnvelope(w, http.StatusOK, nil)
}
