package handlers_test

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, ts *testutil.TestServer, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.BaseURL()+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func post(t *testing.T, ts *testutil.TestServer, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.BaseURL()+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sessionCookies(session *authprovider.Session) []*http.Cookie {
	return []*http.Cookie{
		{Name: authprovider.AccessTokenCookie, Value: session.AccessToken},
		{Name: authprovider.RefreshTokenCookie, Value: session.RefreshToken},
	}
}

func TestLogin_RedirectsToProvider(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := get(t, ts, "/auth/login?provider=github")

	require.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.Contains(t, location, ts.Provider.URL()+"/authorize")
	assert.Contains(t, location, "provider=github")
	assert.Contains(t, location, "redirect_to=")
}

func TestLogin_UnknownProvider(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := get(t, ts, "/auth/login?provider=myspace")

	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
}

func TestLogin_AlreadySignedIn(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, session := testutil.NewUserBuilder().BuildAndSignIn(t, ts)

	resp := get(t, ts, "/auth/login?provider=github", sessionCookies(session)...)

	testutil.AssertRedirect(t, resp, "/projects")
}

func TestCallback_ExchangesCodeAndCreatesUser(t *testing.T) {
	ts := testutil.NewTestServer(t)

	userID := uuid.New()
	ts.Provider.AddCode("oauth-code", &authprovider.User{
		ID:    userID,
		Email: "jane@example.com",
		UserMetadata: authprovider.Metadata{
			"name":       "Jane Smith",
			"avatar_url": "https://example.com/jane.png",
		},
	})

	resp := get(t, ts, "/auth/callback?code=oauth-code")

	testutil.AssertRedirect(t, resp, "/projects")

	access, refresh := testutil.SessionCookies(t, resp)
	assert.NotEmpty(t, access, "access cookie must be set")
	assert.NotEmpty(t, refresh, "refresh cookie must be set")

	// First login provisions the user row from provider metadata.
	user, err := ts.Repos.User.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", user.DisplayName)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Smith", user.LastName)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "https://example.com/jane.png", user.AvatarURL)
}

func TestCallback_TokenResponseWithoutUser(t *testing.T) {
	ts := testutil.NewTestServer(t)

	userID := uuid.New()
	ts.Provider.AddCode("oauth-code", &authprovider.User{
		ID:           userID,
		Email:        "jane@example.com",
		UserMetadata: authprovider.Metadata{"name": "Jane Smith"},
	})
	ts.Provider.SetOmitTokenUser(true)

	resp := get(t, ts, "/auth/callback?code=oauth-code")

	testutil.AssertRedirect(t, resp, "/projects")

	user, err := ts.Repos.User.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", user.DisplayName)
}

func TestCallback_InvalidCode(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := get(t, ts, "/auth/callback?code=bogus")

	testutil.AssertRedirect(t, resp, "/auth/error")

	var count int64
	ts.DB.DB.Model(&domain.User{}).Count(&count)
	assert.Zero(t, count, "failed exchange must not create users")
}

func TestCallback_MissingCode(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := get(t, ts, "/auth/callback")

	testutil.AssertRedirect(t, resp, "/auth/error")
}

func TestDevLogin(t *testing.T) {
	t.Run("signs in the seed user in development", func(t *testing.T) {
		ts := testutil.NewTestServer(t)
		ts.Provider.AddPassword(ts.Config.DevLoginEmail, ts.Config.DevLoginPassword, &authprovider.User{
			ID:           uuid.New(),
			Email:        ts.Config.DevLoginEmail,
			UserMetadata: authprovider.Metadata{"name": "Dev User"},
		})

		resp := post(t, ts, "/auth/dev-login")

		testutil.AssertRedirect(t, resp, "/projects")
		access, refresh := testutil.SessionCookies(t, resp)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
	})

	t.Run("does not exist outside development", func(t *testing.T) {
		ts := testutil.NewTestServerWithEnv(t, "production")

		resp := post(t, ts, "/auth/dev-login")

		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})
}

func TestLogout_ClearsCookies(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, session := testutil.NewUserBuilder().BuildAndSignIn(t, ts)

	resp := post(t, ts, "/auth/logout", sessionCookies(session)...)

	testutil.AssertRedirect(t, resp, "/login")
	for _, c := range resp.Cookies() {
		assert.Empty(t, c.Value, "%s must be cleared", c.Name)
		assert.Negative(t, c.MaxAge, "%s must be expired", c.Name)
	}
}

func TestSessionMiddleware(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, _ := testutil.NewUserBuilder().BuildAndSignIn(t, ts)

	t.Run("anonymous caller passes public routes", func(t *testing.T) {
		for _, path := range []string{"/", "/login", "/auth/error"} {
			resp := get(t, ts, path)
			testutil.AssertStatusCode(t, resp, http.StatusOK)
		}
	})

	t.Run("anonymous caller is sent to login from protected routes", func(t *testing.T) {
		var logs bytes.Buffer
		log.SetOutput(&logs)
		defer log.SetOutput(os.Stderr)

		for _, path := range []string{"/projects", "/settings", "/any/unknown/path"} {
			resp := get(t, ts, path)
			testutil.AssertRedirect(t, resp, "/login")
		}

		// A missing session is routine, not an error.
		assert.NotContains(t, logs.String(), "ERROR [middleware.Session]")
	})

	t.Run("signed in caller passes protected routes with refreshed cookies", func(t *testing.T) {
		session := ts.Provider.IssueSession(t, &authprovider.User{ID: user.ID, Email: user.Email})

		resp := get(t, ts, "/projects", sessionCookies(session)...)

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		access, refresh := testutil.SessionCookies(t, resp)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
	})

	t.Run("expired access token is rotated transparently", func(t *testing.T) {
		session := ts.Provider.IssueExpiredSession(t, &authprovider.User{ID: user.ID, Email: user.Email})

		resp := get(t, ts, "/projects", sessionCookies(session)...)

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		access, _ := testutil.SessionCookies(t, resp)
		assert.NotEmpty(t, access)
		assert.NotEqual(t, session.AccessToken, access, "rotated token must replace the expired one")
	})

	t.Run("signed in caller on login page goes to projects", func(t *testing.T) {
		session := ts.Provider.IssueSession(t, &authprovider.User{ID: user.ID, Email: user.Email})

		resp := get(t, ts, "/login", sessionCookies(session)...)

		testutil.AssertRedirect(t, resp, "/projects")
	})

	t.Run("provider outage lands on the error page", func(t *testing.T) {
		session := ts.Provider.IssueExpiredSession(t, &authprovider.User{ID: user.ID, Email: user.Email})
		ts.Provider.SetDown(true)
		defer ts.Provider.SetDown(false)

		var logs bytes.Buffer
		log.SetOutput(&logs)
		defer log.SetOutput(os.Stderr)

		resp := get(t, ts, "/projects", sessionCookies(session)...)

		testutil.AssertRedirect(t, resp, "/auth/error")
		assert.Equal(t, 1, strings.Count(logs.String(), "ERROR [middleware.Session]"),
			"the fault must be logged exactly once")
	})

	t.Run("provider outage does not block public routes", func(t *testing.T) {
		session := ts.Provider.IssueExpiredSession(t, &authprovider.User{ID: user.ID, Email: user.Email})
		ts.Provider.SetDown(true)
		defer ts.Provider.SetDown(false)

		resp := get(t, ts, "/", sessionCookies(session)...)

		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})
}
