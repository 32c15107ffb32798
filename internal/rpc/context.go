package rpc

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/domain"
	"gorm.io/gorm"
)

// Context is what every procedure receives: the authenticated user (nil
// for anonymous callers), the database handle, and the request headers.
// It is built once per request and threaded explicitly; nothing reads it
// from ambient state.
type Context struct {
	User    *authprovider.User
	DB      *gorm.DB
	Headers http.Header
}

type ContextBuilder struct {
	provider *authprovider.Client
	db       *gorm.DB
}

func NewContextBuilder(provider *authprovider.Client, db *gorm.DB) *ContextBuilder {
	return &ContextBuilder{provider: provider, db: db}
}

// Build resolves the caller with a single provider call. "No user" yields
// an anonymous context; a provider fault fails construction instead, so
// callers can tell "anonymous" apart from "auth subsystem broken".
func (b *ContextBuilder) Build(r *http.Request) (*Context, error) {
	rc := &Context{DB: b.db, Headers: r.Header}

	token := bearerToken(r)
	if token == "" {
		token, _ = authprovider.TokensFromRequest(r)
	}
	if token == "" {
		return rc, nil
	}

	user, err := b.provider.GetUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrMissingSession) {
			// Stale or revoked token: anonymous, not an error.
			return rc, nil
		}
		log.Printf("ERROR [rpc.ContextBuilder] resolving user: %v", err)
		return nil, NewError(CodeUnauthorized, "authentication unavailable")
	}

	rc.User = user
	return rc, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
