package middleware

// Page routes the session middleware cares about. API and websocket paths
// do their own auth and are never routed through it.
const (
	RouteHome         = "/"
	RouteLogin        = "/login"
	RouteProjects     = "/projects"
	RouteAuthCallback = "/auth/callback"
	RouteAuthError    = "/auth/error"
)

// publicRoutes is an exact-match set. New public routes must be added here
// explicitly; there is no prefix or wildcard matching.
var publicRoutes = map[string]bool{
	RouteHome:         true,
	RouteLogin:        true,
	RouteAuthCallback: true,
	RouteAuthError:    true,
}

// IsPublicRoute reports whether path is reachable without a session.
func IsPublicRoute(path string) bool {
	return publicRoutes[path]
}

// ErrorKind classifies the session refresh result.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	// ErrorMissingSession: the user simply is not logged in.
	ErrorMissingSession
	// ErrorProvider: the auth provider itself failed.
	ErrorProvider
)

// Decision is the single terminal outcome for a request.
type Decision int

const (
	DecisionPass Decision = iota
	DecisionRedirectLogin
	DecisionRedirectProjects
	DecisionRedirectError
)

func (d Decision) String() string {
	switch d {
	case DecisionPass:
		return "pass"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectProjects:
		return "redirect_projects"
	case DecisionRedirectError:
		return "redirect_error"
	default:
		return "unknown"
	}
}

// PolicyState is everything the redirect decision depends on.
type PolicyState struct {
	HasUser  bool
	IsPublic bool
	Path     string
	Err      ErrorKind
}

// Decide maps a request's session state to its outcome. Rules are checked
// in order and the first match wins: a provider fault must not be mistaken
// for "no session", and a signed-in user hitting /login must be bounced to
// /projects before the generic protected-route rule fires.
func Decide(s PolicyState) Decision {
	if s.Err == ErrorProvider && !s.IsPublic {
		return DecisionRedirectError
	}
	if s.Err == ErrorMissingSession && !s.IsPublic {
		return DecisionRedirectLogin
	}
	if s.HasUser && s.Path == RouteLogin {
		return DecisionRedirectProjects
	}
	if !s.HasUser && !s.IsPublic {
		return DecisionRedirectLogin
	}
	return DecisionPass
}
