package controllers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/marketplace-console/middleware"
	"github.com/tradepost/marketplace-console/repositories"
	"github.com/tradepost/marketplace-console/services"
	"github.com/tradepost/marketplace-console/storage"
	"github.com/tradepost/marketplace-console/userctx"
)

const loginTestCookie = "console_session_test"

// loginEnv wires the auth controller through the real session middleware, so
// the login flow is exercised end to end: cookie issuance, session
// regeneration, and the admin guard on the far side.
type loginEnv struct {
	server *httptest.Server
	client *http.Client
}

func newLoginEnv(t *testing.T) *loginEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	repos := repositories.NewRepositories(repositories.NewDocumentAuditRepository(store))

	srvs := services.NewServices(repos, zap.NewNop(), services.Options{
		AdminSubject:      "admin",
		AdminPasswordHash: string(hash),
		SessionLifetime:   24 * time.Hour,
		MinFillTime:       3 * time.Second,
	})
	auth := NewAuthController(srvs, zap.NewNop())

	r := chi.NewRouter()
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:    "memory",
		CookieName:  loginTestCookie,
		Gclifetime:  3600,
		Maxlifetime: 86400,
	})
	require.NoError(t, err)
	r.Use(sessionHandler)

	// Exposes the current session identifier so tests can watch it change.
	r.Get("/id", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, session.GetSession(req).ID())
	})

	r.Get("/login", auth.LoginForm)
	r.Post("/login", auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(srvs.Sessions, srvs.CSRF, zap.NewNop()))

		r.Get("/admin/ping", func(w http.ResponseWriter, req *http.Request) {
			fmt.Fprint(w, userctx.GetSubject(req.Context()))
		})
	})

	env := &loginEnv{server: httptest.NewServer(r)}
	t.Cleanup(env.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	env.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return env
}

func (env *loginEnv) sessionID(t *testing.T) string {
	t.Helper()
	resp, err := env.client.Get(env.server.URL + "/id")
	require.NoError(t, err)
	defer resp.Body.Close()
	id, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(id)
}

func (env *loginEnv) login(t *testing.T, password string) *http.Response {
	t.Helper()
	resp, err := env.client.PostForm(env.server.URL+"/login", url.Values{"password": {password}})
	require.NoError(t, err)
	return resp
}

func TestLoginRotatesSessionIdentifier(t *testing.T) {
	env := newLoginEnv(t)

	anonymousID := env.sessionID(t)
	require.NotEmpty(t, anonymousID)

	resp := env.login(t, "s3cret")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))

	loggedInID := env.sessionID(t)
	require.NotEmpty(t, loggedInID)
	require.NotEqual(t, anonymousID, loggedInID,
		"login must issue a fresh session identifier")

	// The new identifier carries the authenticated subject.
	resp, err := env.client.Get(env.server.URL + "/admin/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "admin", string(body))
}

func TestLoginInvalidatesPreLoginIdentifier(t *testing.T) {
	env := newLoginEnv(t)

	anonymousID := env.sessionID(t)

	resp := env.login(t, "s3cret")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// A client replaying the pre-login cookie is anonymous again: the old
	// identifier was retired when the session was regenerated.
	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/admin/ping", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: loginTestCookie, Value: anonymousID})

	plain := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	stale, err := plain.Do(req)
	require.NoError(t, err)
	defer stale.Body.Close()
	require.Equal(t, http.StatusSeeOther, stale.StatusCode)
	require.Equal(t, "/login?reason="+middleware.ReasonUnauthenticated, stale.Header.Get("Location"))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newLoginEnv(t)

	resp := env.login(t, "not-the-password")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Invalid credentials")

	// No session was established by the failed attempt.
	ping, err := env.client.Get(env.server.URL + "/admin/ping")
	require.NoError(t, err)
	ping.Body.Close()
	require.Equal(t, http.StatusSeeOther, ping.StatusCode)
}
