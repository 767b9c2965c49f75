package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/lumdash/internal/auth"
	"github.com/hnrobert/lumdash/internal/config"
	"github.com/hnrobert/lumdash/internal/logger"
	"github.com/hnrobert/lumdash/internal/users"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type fixture struct {
	app      *App
	handler  http.Handler
	dir      *users.Directory
	settings *config.Store
}

// newFixture builds an app over a temp data root. The directory is loaded
// unless loaded is false.
func newFixture(t *testing.T, loaded bool) *fixture {
	t.Helper()
	root := t.TempDir()

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	body := fmt.Sprintf(`users:
  - id: u1
    name: alice
    display_name: Alice
    admin: true
    password: %q
  - id: u2
    name: bob
    password: %q
`, hash, hash)
	require.NoError(t, os.WriteFile(filepath.Join(root, "users.yaml"), []byte(body), 0o600))

	dir := users.NewDirectory(filepath.Join(root, "users.yaml"))
	if loaded {
		require.NoError(t, dir.Load(context.Background()))
	}
	settings := config.NewStore(filepath.Join(root, "settings.yaml"))
	require.NoError(t, settings.Ensure())
	require.NoError(t, settings.SetFooterNotice("Run by **ops**."))

	app, err := NewApp(Options{Secret: testSecret, SessionTTL: time.Hour}, dir, settings)
	require.NoError(t, err)
	return &fixture{app: app, handler: app.Routes(), dir: dir, settings: settings}
}

func (f *fixture) cookieFor(t *testing.T, u users.User) *http.Cookie {
	t.Helper()
	tok, err := auth.SignHS256(testSecret, u, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.DefaultCookieName, Value: tok}
}

func (f *fixture) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	f := newFixture(t, true)
	for _, path := range []string{"/", "/profile", "/admin"} {
		rec := f.get(path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
		assert.Empty(t, rec.Body.String(), path)
	}
}

func TestDashboardRedirectsUnknownSubject(t *testing.T) {
	f := newFixture(t, true)
	rec := f.get("/", f.cookieFor(t, users.User{ID: "ghost", Name: "ghost"}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestDashboardLoadingWhileDirectoryLoads(t *testing.T) {
	f := newFixture(t, false)
	for _, c := range []*http.Cookie{nil, f.cookieFor(t, users.User{ID: "u1", Name: "alice"})} {
		rec := f.get("/", c)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Refresh"))
		assert.Empty(t, rec.Header().Get("Location"))
		assert.Contains(t, rec.Body.String(), `data-view="loading"`)
		assert.NotContains(t, rec.Body.String(), "Welcome")
	}
}

func TestDashboardShellForSignedInUser(t *testing.T) {
	f := newFixture(t, true)
	rec := f.get("/", f.cookieFor(t, users.User{ID: "u2", Name: "bob"}))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	header := strings.Index(body, `data-region="header"`)
	content := strings.Index(body, "Welcome, bob")
	footer := strings.Index(body, `data-region="footer"`)
	require.True(t, header >= 0 && content >= 0 && footer >= 0, body)
	assert.Less(t, header, content)
	assert.Less(t, content, footer)
	assert.Contains(t, body, "<strong>ops</strong>")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDirectoryIsAuthoritativeOverClaims(t *testing.T) {
	f := newFixture(t, true)
	// The token claims admin, the directory says bob is a member.
	rec := f.get("/admin", f.cookieFor(t, users.User{ID: "u2", Name: "bob", Admin: true}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminPage(t *testing.T) {
	f := newFixture(t, true)
	rec := f.get("/admin", f.cookieFor(t, users.User{ID: "u1", Name: "alice"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>bob</td>")
	assert.Contains(t, rec.Body.String(), `aria-current="page">Admin</a>`)
}

func TestBearerToken(t *testing.T) {
	f := newFixture(t, true)
	tok, err := auth.SignHS256(testSecret, users.User{ID: "u1", Name: "alice"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<dd>u1</dd>")
}

func postLogin(f *fixture, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	f := newFixture(t, true)

	rec := postLogin(f, "alice", "correct horse")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.DefaultCookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	dash := f.get("/", session)
	assert.Equal(t, http.StatusOK, dash.Code)
	assert.Contains(t, dash.Body.String(), "Welcome, Alice")

	again := f.get("/login", session)
	assert.Equal(t, http.StatusSeeOther, again.Code)
	assert.Equal(t, "/", again.Header().Get("Location"))
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t, true)

	rec := postLogin(f, "alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")

	rec = postLogin(f, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	loading := newFixture(t, false)
	rec = postLogin(loading, "alice", "correct horse")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "still loading")
}

func TestLoginPage(t *testing.T) {
	f := newFixture(t, true)
	rec := f.get("/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)
	assert.NotContains(t, rec.Body.String(), `data-region="header"`)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, true)
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(f.cookieFor(t, users.User{ID: "u1", Name: "alice"}))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, false)
	assert.JSONEq(t, `{"ok":true,"ready":false}`, f.get("/api/healthz", nil).Body.String())

	require.NoError(t, f.dir.Load(context.Background()))
	assert.JSONEq(t, `{"ok":true,"ready":true}`, f.get("/api/healthz", nil).Body.String())
}

type sseReader struct {
	r *bufio.Reader
}

func (s *sseReader) next(t *testing.T) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := s.r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if name != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func openWatch(t *testing.T, f *fixture, cookie *http.Cookie) *sseReader {
	t.Helper()
	srv := httptest.NewServer(f.handler)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/session/watch", nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return &sseReader{r: bufio.NewReader(resp.Body)}
}

func TestWatchAnonymousNavigatesToLogin(t *testing.T) {
	f := newFixture(t, true)
	s := openWatch(t, f, nil)

	name, data := s.next(t)
	assert.Equal(t, "view", name)
	assert.Equal(t, "unauthenticated", data)

	name, data = s.next(t)
	assert.Equal(t, "navigate", name)
	assert.Equal(t, "/login", data)
}

func TestWatchFollowsDirectory(t *testing.T) {
	f := newFixture(t, false)
	s := openWatch(t, f, f.cookieFor(t, users.User{ID: "u2", Name: "bob"}))

	name, data := s.next(t)
	assert.Equal(t, "view", name)
	assert.Equal(t, "loading", data)

	require.NoError(t, f.dir.Load(context.Background()))
	name, data = s.next(t)
	assert.Equal(t, "view", name)
	assert.Equal(t, "authenticated", data)

	// bob is removed from the file: the live view drops to unauthenticated.
	p := f.dir.Path()
	require.NoError(t, os.WriteFile(p, []byte("users:\n  - {id: u1, name: alice}\n"), 0o600))
	require.NoError(t, f.dir.Reload(context.Background()))

	name, data = s.next(t)
	assert.Equal(t, "view", name)
	assert.Equal(t, "unauthenticated", data)
	name, data = s.next(t)
	assert.Equal(t, "navigate", name)
	assert.Equal(t, "/login", data)
}
