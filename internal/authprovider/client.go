// Package authprovider is the HTTP client for the hosted auth service
// (a GoTrue-compatible API). It owns session refresh, the OAuth code
// exchange, and the session cookie codec. No credentials are stored here;
// the provider is the source of truth for identity.
package authprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
)

// refreshLeeway is how close to expiry an access token may be before we
// rotate it anyway, so it does not expire mid-request.
const refreshLeeway = 30 * time.Second

// Metadata is the provider's free-form user/app metadata bag.
type Metadata map[string]any

// String returns the metadata value for key if it is a non-empty string.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// User is the provider's view of an identity. ID doubles as the primary
// key of our own users table.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	UserMetadata Metadata  `json:"user_metadata"`
	AppMetadata  Metadata  `json:"app_metadata"`
}

// Session is a provider token pair plus the resolved user.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type Client struct {
	baseURL    string
	jwtSecret  string
	httpClient *http.Client
}

func NewClient(baseURL, jwtSecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		jwtSecret: jwtSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RefreshSession validates or rotates the request's token pair and resolves
// the current user. Returns domain.ErrMissingSession when the caller simply
// is not logged in and domain.ErrProviderUnreachable when the provider
// itself failed; callers must treat the two differently.
func (c *Client) RefreshSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" && refreshToken == "" {
		return nil, domain.ErrMissingSession
	}

	// A still-valid access token only needs the user resolved, not a rotation.
	if accessToken != "" && c.accessTokenValid(accessToken) {
		user, err := c.GetUser(ctx, accessToken)
		if err == nil {
			return &Session{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				User:         user,
			}, nil
		}
		if !errors.Is(err, domain.ErrMissingSession) || refreshToken == "" {
			return nil, err
		}
		// Token was revoked server-side; fall through to the refresh grant.
	}

	if refreshToken == "" {
		return nil, domain.ErrMissingSession
	}

	var session Session
	err := c.doJSON(ctx, http.MethodPost, "/token?grant_type=refresh_token",
		map[string]string{"refresh_token": refreshToken}, "", &session)
	if err != nil {
		return nil, err
	}

	if session.User == nil {
		user, err := c.GetUser(ctx, session.AccessToken)
		if err != nil {
			return nil, err
		}
		session.User = user
	}
	return &session, nil
}

// GetUser resolves the user behind an access token with a single provider call.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, domain.ErrMissingSession
	}
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/user", nil, accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExchangeCode trades an OAuth callback code for a session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	if code == "" {
		return nil, domain.ErrMissingSession
	}
	var session Session
	err := c.doJSON(ctx, http.MethodPost, "/token?grant_type=authorization_code",
		map[string]string{"auth_code": code}, "", &session)
	if err != nil {
		return nil, err
	}

	// Some provider configurations omit the user from the token response.
	if session.User == nil {
		user, err := c.GetUser(ctx, session.AccessToken)
		if err != nil {
			return nil, err
		}
		session.User = user
	}
	return &session, nil
}

// SignInWithPassword performs the password grant. Only the dev login uses it.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.doJSON(ctx, http.MethodPost, "/token?grant_type=password",
		map[string]string{"email": email, "password": password}, "", &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session server-side. Best effort; cookie clearing is
// the caller's job.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/logout", nil, accessToken, nil)
}

// AuthorizeURL builds the provider's OAuth entry point for the given
// external provider ("github", "google").
func (c *Client) AuthorizeURL(provider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	return c.baseURL + "/authorize?" + q.Encode()
}

// accessTokenValid checks signature and expiry locally, so an unexpired
// token does not cost a refresh round-trip on every request.
func (c *Client) accessTokenValid(accessToken string) bool {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.Parse(accessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(c.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now().Add(refreshLeeway))
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, bearer string, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrorMessage(resp.Body)
		switch {
		case resp.StatusCode == http.StatusUnauthorized,
			resp.StatusCode == http.StatusBadRequest,
			resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %s", domain.ErrMissingSession, msg)
		default:
			return fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnreachable, resp.StatusCode, msg)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrProviderUnreachable, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"msg"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return "unknown error"
	}
	for _, m := range []string{payload.ErrorDescription, payload.Message, payload.Error} {
		if m != "" {
			return m
		}
	}
	return "unknown error"
}
