package cli

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Jaemnie/sellog/api"
	"github.com/Jaemnie/sellog/guard"
	apperrors "github.com/Jaemnie/sellog/internal/errors"
	"github.com/Jaemnie/sellog/internal/fakebackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	out    string
	errOut string
	err    error
}

func execute(t *testing.T, backend *fakebackend.Backend, input string, args ...string) result {
	t.Helper()

	var out, errOut bytes.Buffer
	args = append([]string{"--api-url", backend.URL(), "--no-color"}, args...)
	err := Execute(context.Background(), args, strings.NewReader(input), &out, &errOut)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func TestShellSession(t *testing.T) {
	backend := fakebackend.New(t)
	backend.Handle("GET", "/api/post", func(w http.ResponseWriter, _ *http.Request, _ string) {
		fakebackend.WriteEnvelope(w, http.StatusOK, api.CursorPage[api.Post]{
			Content: []api.Post{{PostID: "p1", Type: api.PostTypeProduct, Title: "Road bike", Nickname: "alice", Price: 120000}},
		})
	})

	input := "login user-1\npassword123\nstatus\nfeed\nlogout\nexit\n"
	res := execute(t, backend, input, "shell")
	require.NoError(t, res.err)

	assert.Contains(t, res.out, "[OK] Logged in as user-1")
	assert.Contains(t, res.out, "logged in")
	assert.Contains(t, res.out, "Road bike")
	assert.Contains(t, res.out, "120000")
	assert.Contains(t, res.out, "[OK] Logged out")
	assert.Contains(t, res.out, "viewing /home")
	assert.Equal(t, 1, backend.LoginCalls())
	assert.Equal(t, 1, backend.LogoutCalls())

	// once when the shell opens logged out, once when the session ends on /home
	assert.Equal(t, 2, strings.Count(res.errOut, guard.LoginRequiredMessage))
}

func TestShellNoticeOncePerView(t *testing.T) {
	backend := fakebackend.New(t)

	res := execute(t, backend, "status\nhelp\nstatus\nopen /mypage\nexit\n", "shell")
	require.NoError(t, res.err)

	assert.Equal(t, 2, strings.Count(res.errOut, guard.LoginRequiredMessage))
	assert.Contains(t, res.out, "→ /login")
	assert.Contains(t, res.out, "logged out")
	assert.Contains(t, res.out, "open <path>")
}

func TestShellEndsOnEOF(t *testing.T) {
	backend := fakebackend.New(t)

	res := execute(t, backend, "status\n", "shell")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "logged out")
}

func TestShellReportsCommandErrors(t *testing.T) {
	backend := fakebackend.New(t)

	res := execute(t, backend, "frobnicate\nopen nowhere\nexit\n", "shell")
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "unknown command")
	assert.Contains(t, res.errOut, "usage: open /path")
}

func TestLoginWithWrongPassword(t *testing.T) {
	backend := fakebackend.New(t)

	res := execute(t, backend, "wrong\n", "login", "user-1")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "wrong user ID or password")
	assert.Zero(t, backend.RefreshCalls())
}

func TestPostRequiresLogin(t *testing.T) {
	backend := fakebackend.New(t)

	res := execute(t, backend, "", "post", "--title", "hello", "--contents", "first post")
	require.ErrorIs(t, res.err, apperrors.ErrNotLoggedIn)
	assert.Contains(t, res.errOut, "Log in to write a post.")
	assert.Empty(t, backend.RequestsTo("/api/post"))
}

func TestPostValidation(t *testing.T) {
	backend := fakebackend.New(t)

	res := execute(t, backend, "", "post", "--type", "product", "--title", "bike", "--contents", "barely used")
	require.Error(t, res.err)
	assert.True(t, apperrors.Is(res.err, apperrors.ErrInvalidRequest))
	assert.Contains(t, res.err.Error(), "price")
}

func TestShellPostFollowBlock(t *testing.T) {
	backend := fakebackend.New(t)
	backend.Handle("POST", "/api/post", func(w http.ResponseWriter, _ *http.Request, userID string) {
		fakebackend.WriteEnvelope(w, http.StatusOK, api.Post{PostID: "p42", UserID: userID})
	})
	backend.Handle("GET", "/api/blocks", func(w http.ResponseWriter, _ *http.Request, _ string) {
		fakebackend.WriteEnvelope(w, http.StatusOK, api.CursorPage[api.UserBasic]{
			Content: []api.UserBasic{{UserID: "user-9", Nickname: "spammer"}},
		})
	})

	input := strings.Join([]string{
		"login user-1",
		"password123",
		"post --title hello --contents hi --tag intro",
		"follow user-2",
		"block user-3 --undo",
		"block",
		"exit",
	}, "\n") + "\n"
	res := execute(t, backend, input, "shell")
	require.NoError(t, res.err)

	assert.Contains(t, res.out, `Posted "hello" (p42)`)
	assert.Contains(t, res.out, "Following user-2")
	assert.Contains(t, res.out, "Unblocked user-3")
	assert.Contains(t, res.out, "spammer")

	posts := backend.RequestsTo("/api/post")
	require.Len(t, posts, 1)
	assert.JSONEq(t, `{"title":"hello","type":"POST","contents":"hi","tagNames":["intro"],"price":0}`, string(posts[0].Body))
	assert.Len(t, backend.RequestsTo("/api/blocks/user-3"), 1)
}

func TestShellSearch(t *testing.T) {
	backend := fakebackend.New(t)
	backend.Handle("GET", "/api/search", func(w http.ResponseWriter, _ *http.Request, _ string) {
		fakebackend.WriteEnvelope(w, http.StatusOK, api.SearchPage{
			Content: []api.SearchIndex{
				{SourceType: api.SourceUser, UserID: "bikelover", Nickname: "Bike Lover"},
				{SourceType: api.SourceProduct, SourceID: "p7", Title: "Fixie", Price: 300000, Nickname: "seller"},
			},
		})
	})
	backend.Handle("GET", "/api/search/suggestions/autocomplete", func(w http.ResponseWriter, _ *http.Request, _ string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["bike","bikepacking"]`))
	})

	input := "login user-1\npassword123\nsearch bike --type product\nsearch bik --suggest\nexit\n"
	res := execute(t, backend, input, "shell")
	require.NoError(t, res.err)

	assert.Contains(t, res.out, "Products")
	assert.Contains(t, res.out, "Fixie")
	assert.NotContains(t, res.out, "Bike Lover")
	assert.Contains(t, res.out, "bikepacking")

	searches := backend.RequestsTo("/api/search")
	require.Len(t, searches, 1)
	assert.Equal(t, "PRODUCT", searches[0].Query.Get("targetType"))
	assert.NotContains(t, searches[0].Query, "page")
}

func TestConfigFileAndFlags(t *testing.T) {
	backend := fakebackend.New(t)
	file := filepath.Join(t.TempDir(), "sellog.yaml")
	require.NoError(t, os.WriteFile(file, []byte("app:\n  name: market\nsession:\n  login_route: /signin\n"), 0o600))

	res := execute(t, backend, "exit\n", "--config", file, "shell")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "→ /signin")
	assert.Contains(t, res.out, "market:/signin>")

	res = execute(t, backend, "", "--store", "redis", "--redis-addr", "127.0.0.1:1", "status")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "redis")
}

func TestStatusEndsUnrecoverableSession(t *testing.T) {
	backend := fakebackend.New(t)
	backend.SetTokenTTL(-time.Minute)
	backend.FailRefresh(true)

	res := execute(t, backend, "login user-1\npassword123\nstatus\nexit\n", "shell")
	require.NoError(t, res.err)

	assert.Contains(t, res.out, "expired, log in again")
	assert.Equal(t, 1, backend.RefreshCalls())
	// once when the shell opens logged out, once when the expired session is ended on /home
	assert.Equal(t, 2, strings.Count(res.errOut, guard.LoginRequiredMessage))
	assert.Contains(t, res.out, "○ sellog:/login>")
}
