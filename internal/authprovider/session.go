package authprovider

import "net/http"

const (
	AccessTokenCookie  = "mino-access-token"
	RefreshTokenCookie = "mino-refresh-token"

	// Refresh tokens are single-use but long-lived; the provider rotates
	// them on every refresh grant.
	refreshCookieMaxAge = 30 * 24 * 60 * 60
	defaultAccessMaxAge = 3600
)

// TokensFromRequest reads the session token pair from the request cookies.
// Either value may be empty.
func TokensFromRequest(r *http.Request) (accessToken, refreshToken string) {
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		accessToken = c.Value
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = c.Value
	}
	return accessToken, refreshToken
}

// WriteSessionCookies attaches the refreshed token pair to the response.
// The middleware calls this exactly once per request.
func WriteSessionCookies(w http.ResponseWriter, s *Session, secure bool) {
	accessMaxAge := s.ExpiresIn
	if accessMaxAge <= 0 {
		accessMaxAge = defaultAccessMaxAge
	}
	http.SetCookie(w, sessionCookie(AccessTokenCookie, s.AccessToken, accessMaxAge, secure))
	http.SetCookie(w, sessionCookie(RefreshTokenCookie, s.RefreshToken, refreshCookieMaxAge, secure))
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, sessionCookie(AccessTokenCookie, "", -1, secure))
	http.SetCookie(w, sessionCookie(RefreshTokenCookie, "", -1, secure))
}

func sessionCookie(name, value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
