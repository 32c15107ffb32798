package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/authprovider"
)

// TestJWTSecret signs access tokens issued by the fake provider. Tests and
// the real client share it so local expiry checks behave as in production.
const TestJWTSecret = "test-jwt-secret-key-for-testing-only"

// FakeAuthProvider is an in-process stand-in for the hosted auth service.
// It speaks just enough of the token/user/logout API for the client to work
// against, and can be switched into a failure mode to simulate an outage.
type FakeAuthProvider struct {
	server *httptest.Server

	mu             sync.Mutex
	down           bool
	omitTokenUser  bool
	usersByAccess  map[string]*authprovider.User
	usersByRefresh map[string]*authprovider.User
	codes          map[string]*authprovider.User
	passwords      map[string]*authprovider.User
}

// NewFakeAuthProvider starts the fake provider and registers cleanup.
func NewFakeAuthProvider(t *testing.T) *FakeAuthProvider {
	t.Helper()

	p := &FakeAuthProvider{
		usersByAccess:  make(map[string]*authprovider.User),
		usersByRefresh: make(map[string]*authprovider.User),
		codes:          make(map[string]*authprovider.User),
		passwords:      make(map[string]*authprovider.User),
	}
	p.server = httptest.NewServer(http.HandlerFunc(p.handle))
	t.Cleanup(p.server.Close)
	return p
}

// URL returns the fake provider's base URL.
func (p *FakeAuthProvider) URL() string {
	return p.server.URL
}

// SetDown toggles the outage mode. While down, every endpoint returns 500.
func (p *FakeAuthProvider) SetDown(down bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.down = down
}

// SetOmitTokenUser makes token responses leave out the user object, as
// some provider configurations do. The user stays resolvable via /user.
func (p *FakeAuthProvider) SetOmitTokenUser(omit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitTokenUser = omit
}

// IssueSession registers a user and returns a session with a freshly signed
// access token valid for one hour.
func (p *FakeAuthProvider) IssueSession(t *testing.T, user *authprovider.User) *authprovider.Session {
	t.Helper()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issueSessionLocked(t, user)
}

// IssueExpiredSession registers a user whose access token is already expired,
// so only the refresh token is usable.
func (p *FakeAuthProvider) IssueExpiredSession(t *testing.T, user *authprovider.User) *authprovider.Session {
	t.Helper()

	p.mu.Lock()
	defer p.mu.Unlock()

	access := signAccessToken(t, user.ID, time.Now().Add(-time.Hour))
	refresh := uuid.NewString()
	p.usersByRefresh[refresh] = user
	return &authprovider.Session{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    0,
		RefreshToken: refresh,
		User:         user,
	}
}

// AddCode registers an OAuth callback code for the authorization_code grant.
func (p *FakeAuthProvider) AddCode(code string, user *authprovider.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes[code] = user
}

// AddPassword registers credentials for the password grant.
func (p *FakeAuthProvider) AddPassword(email, password string, user *authprovider.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passwords[email+":"+password] = user
}

// RevokeAccessToken makes the provider reject a token the client still
// considers locally valid.
func (p *FakeAuthProvider) RevokeAccessToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.usersByAccess, token)
}

func (p *FakeAuthProvider) issueSessionLocked(t *testing.T, user *authprovider.User) *authprovider.Session {
	access := signAccessToken(t, user.ID, time.Now().Add(time.Hour))
	refresh := uuid.NewString()
	p.usersByAccess[access] = user
	p.usersByRefresh[refresh] = user
	return &authprovider.Session{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    3600,
		RefreshToken: refresh,
		User:         user,
	}
}

func (p *FakeAuthProvider) handle(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.down {
		writeAuthError(w, http.StatusInternalServerError, "service unavailable")
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/token":
		p.handleToken(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/user":
		p.handleUser(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/logout":
		w.WriteHeader(http.StatusNoContent)
	default:
		writeAuthError(w, http.StatusNotFound, "not found")
	}
}

func (p *FakeAuthProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
		AuthCode     string `json:"auth_code"`
		Email        string `json:"email"`
		Password     string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid body")
		return
	}

	var user *authprovider.User
	switch r.URL.Query().Get("grant_type") {
	case "refresh_token":
		u, ok := p.usersByRefresh[body.RefreshToken]
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Invalid Refresh Token")
			return
		}
		// Rotate: the old refresh token is single use.
		delete(p.usersByRefresh, body.RefreshToken)
		user = u
	case "authorization_code":
		u, ok := p.codes[body.AuthCode]
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "invalid code")
			return
		}
		delete(p.codes, body.AuthCode)
		user = u
	case "password":
		u, ok := p.passwords[body.Email+":"+body.Password]
		if !ok {
			writeAuthError(w, http.StatusBadRequest, "Invalid login credentials")
			return
		}
		user = u
	default:
		writeAuthError(w, http.StatusBadRequest, "unsupported grant type")
		return
	}

	access := signAccessTokenNoT(user.ID, time.Now().Add(time.Hour))
	refresh := uuid.NewString()
	p.usersByAccess[access] = user
	p.usersByRefresh[refresh] = user

	session := authprovider.Session{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    3600,
		RefreshToken: refresh,
		User:         user,
	}
	if p.omitTokenUser {
		session.User = nil
	}
	json.NewEncoder(w).Encode(session)
}

func (p *FakeAuthProvider) handleUser(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	user, ok := p.usersByAccess[token]
	if !ok {
		writeAuthError(w, http.StatusUnauthorized, "invalid JWT")
		return
	}
	json.NewEncoder(w).Encode(user)
}

func signAccessToken(t *testing.T, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()

	token := signAccessTokenNoT(userID, expiresAt)
	if token == "" {
		t.Fatal("failed to sign access token")
	}
	return token
}

func signAccessTokenNoT(userID uuid.UUID, expiresAt time.Time) string {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": expiresAt.Unix(),
		// Unique per token, as with a real provider; without it two tokens
		// minted in the same second for the same user are byte-identical,
		// so a "rotated" session can collide with the token it replaced.
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(TestJWTSecret))
	if err != nil {
		return ""
	}
	return signed
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
