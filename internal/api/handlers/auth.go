package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/mino-dev/mino-web/internal/api/middleware"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/config"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/service"
)

var oauthProviders = map[string]bool{
	"github": true,
	"google": true,
}

type AuthHandler struct {
	provider    *authprovider.Client
	userService *service.UserService
	cfg         *config.Config
}

func NewAuthHandler(provider *authprovider.Client, userService *service.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		userService: userService,
		cfg:         cfg,
	}
}

// Login starts the OAuth flow. A caller who is already signed in is sent
// straight to /projects instead.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	oauthProvider := r.URL.Query().Get("provider")
	if oauthProvider == "" {
		oauthProvider = r.FormValue("provider")
	}
	if !oauthProviders[oauthProvider] {
		http.Error(w, "Unknown provider", http.StatusBadRequest)
		return
	}

	if h.redirectIfSignedIn(w, r) {
		return
	}

	redirectTo := h.cfg.SiteURL + middleware.RouteAuthCallback
	http.Redirect(w, r, h.provider.AuthorizeURL(oauthProvider, redirectTo), http.StatusFound)
}

// DevLogin signs in the seed user with the password grant. Only exists in
// development; 404 everywhere else.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.IsDevelopment() {
		http.NotFound(w, r)
		return
	}

	if h.redirectIfSignedIn(w, r) {
		return
	}

	session, err := h.provider.SignInWithPassword(r.Context(), h.cfg.DevLoginEmail, h.cfg.DevLoginPassword)
	if err != nil {
		log.Printf("ERROR [handlers.AuthHandler.DevLogin] password sign-in failed: %v", err)
		http.Redirect(w, r, middleware.RouteAuthError, http.StatusFound)
		return
	}

	authprovider.WriteSessionCookies(w, session, h.secureCookies())
	http.Redirect(w, r, middleware.RouteProjects, http.StatusFound)
}

// Callback handles the OAuth return leg: exchange the code for a session,
// make sure the user row exists, then hand off to /projects. Every failure
// lands on the error page.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, middleware.RouteAuthError, http.StatusFound)
		return
	}

	session, err := h.provider.ExchangeCode(r.Context(), code)
	if err != nil {
		log.Printf("ERROR [handlers.AuthHandler.Callback] exchanging code for session: %v", err)
		http.Redirect(w, r, middleware.RouteAuthError, http.StatusFound)
		return
	}

	authprovider.WriteSessionCookies(w, session, h.secureCookies())

	user, err := h.userService.Upsert(r.Context(), session.User, service.UpsertUserInput{
		ID: session.User.ID,
	})
	if err != nil {
		log.Printf("ERROR [handlers.AuthHandler.Callback] upserting user %s: %v", session.User.ID, err)
		http.Redirect(w, r, middleware.RouteAuthError, http.StatusFound)
		return
	}
	if user == nil {
		log.Printf("ERROR [handlers.AuthHandler.Callback] upsert returned no row for user %s", session.User.ID)
		http.Redirect(w, r, middleware.RouteAuthError, http.StatusFound)
		return
	}

	http.Redirect(w, r, middleware.RouteProjects, http.StatusFound)
}

// Logout revokes the provider session (best effort) and clears cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken, _ := authprovider.TokensFromRequest(r)
	if accessToken != "" {
		if err := h.provider.SignOut(r.Context(), accessToken); err != nil && !errors.Is(err, domain.ErrMissingSession) {
			log.Printf("ERROR [handlers.AuthHandler.Logout] provider sign-out failed: %v", err)
		}
	}

	authprovider.ClearSessionCookies(w, h.secureCookies())
	http.Redirect(w, r, middleware.RouteLogin, http.StatusFound)
}

// redirectIfSignedIn sends an already-authenticated caller to /projects.
// Reports whether a redirect was written.
func (h *AuthHandler) redirectIfSignedIn(w http.ResponseWriter, r *http.Request) bool {
	accessToken, refreshToken := authprovider.TokensFromRequest(r)
	session, err := h.provider.RefreshSession(r.Context(), accessToken, refreshToken)
	if err != nil {
		if !errors.Is(err, domain.ErrMissingSession) {
			log.Printf("ERROR [handlers.AuthHandler] retrieving current session: %v", err)
			http.Redirect(w, r, middleware.RouteAuthError, http.StatusFound)
			return true
		}
		return false
	}
	if session.User != nil {
		http.Redirect(w, r, middleware.RouteProjects, http.StatusFound)
		return true
	}
	return false
}

func (h *AuthHandler) secureCookies() bool {
	return !h.cfg.IsDevelopment()
}
