package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/metrics"
)

// Session refreshes the auth session on every page request and applies the
// redirect policy. The decision itself is the pure Decide function; this
// middleware only gathers its inputs and performs the redirect or
// pass-through, attaching refreshed cookies exactly once.
func Session(provider *authprovider.Client, collector *metrics.Collector, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessToken, refreshToken := authprovider.TokensFromRequest(r)
			session, err := provider.RefreshSession(r.Context(), accessToken, refreshToken)

			state := PolicyState{
				HasUser:  session != nil && session.User != nil,
				IsPublic: IsPublicRoute(r.URL.Path),
				Path:     r.URL.Path,
				Err:      classifyRefreshError(err),
			}
			decision := Decide(state)

			if collector != nil {
				collector.RecordSessionDecision(decision.String())
			}

			switch decision {
			case DecisionRedirectError:
				// A real provider fault, not a login problem. Missing
				// sessions never reach this branch and are never logged.
				log.Printf("ERROR [middleware.Session] auth provider error: %v", err)
				http.Redirect(w, r, RouteAuthError, http.StatusFound)

			case DecisionRedirectLogin:
				http.Redirect(w, r, RouteLogin, http.StatusFound)

			case DecisionRedirectProjects:
				if session != nil {
					authprovider.WriteSessionCookies(w, session, secureCookies)
				}
				http.Redirect(w, r, RouteProjects, http.StatusFound)

			default:
				if session != nil {
					authprovider.WriteSessionCookies(w, session, secureCookies)
				}
				next.ServeHTTP(w, r)
			}
		})
	}
}

func classifyRefreshError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, domain.ErrMissingSession):
		return ErrorMissingSession
	default:
		return ErrorProvider
	}
}
