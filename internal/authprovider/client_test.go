package authprovider_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*authprovider.Client, *testutil.FakeAuthProvider) {
	t.Helper()

	provider := testutil.NewFakeAuthProvider(t)
	client := authprovider.NewClient(provider.URL(), testutil.TestJWTSecret, 5*time.Second)
	return client, provider
}

func testUser() *authprovider.User {
	return &authprovider.User{
		ID:    uuid.New(),
		Email: "jane@example.com",
		UserMetadata: authprovider.Metadata{
			"name": "Jane Smith",
		},
	}
}

func TestRefreshSession_NoTokens(t *testing.T) {
	client, _ := newTestClient(t)

	session, err := client.RefreshSession(context.Background(), "", "")

	assert.ErrorIs(t, err, domain.ErrMissingSession)
	assert.Nil(t, session)
}

func TestRefreshSession_ValidAccessTokenSkipsRefresh(t *testing.T) {
	client, provider := newTestClient(t)
	user := testUser()
	issued := provider.IssueSession(t, user)

	session, err := client.RefreshSession(context.Background(), issued.AccessToken, issued.RefreshToken)

	require.NoError(t, err)
	require.NotNil(t, session.User)
	// The token pair must come back unchanged, not rotated.
	assert.Equal(t, issued.AccessToken, session.AccessToken)
	assert.Equal(t, issued.RefreshToken, session.RefreshToken)
	assert.Equal(t, user.ID, session.User.ID)
	assert.Equal(t, user.Email, session.User.Email)
}

func TestRefreshSession_ExpiredAccessTokenRotates(t *testing.T) {
	client, provider := newTestClient(t)
	user := testUser()
	issued := provider.IssueExpiredSession(t, user)

	session, err := client.RefreshSession(context.Background(), issued.AccessToken, issued.RefreshToken)

	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.NotEqual(t, issued.AccessToken, session.AccessToken)
	assert.NotEqual(t, issued.RefreshToken, session.RefreshToken)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestRefreshSession_RefreshTokenOnly(t *testing.T) {
	client, provider := newTestClient(t)
	user := testUser()
	issued := provider.IssueSession(t, user)

	session, err := client.RefreshSession(context.Background(), "", issued.RefreshToken)

	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestRefreshSession_RevokedAccessTokenFallsBackToRefresh(t *testing.T) {
	client, provider := newTestClient(t)
	user := testUser()
	issued := provider.IssueSession(t, user)

	// Locally the access token still looks valid, but the provider no
	// longer accepts it.
	provider.RevokeAccessToken(issued.AccessToken)

	session, err := client.RefreshSession(context.Background(), issued.AccessToken, issued.RefreshToken)

	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.NotEqual(t, issued.AccessToken, session.AccessToken)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestRefreshSession_UnknownRefreshToken(t *testing.T) {
	client, _ := newTestClient(t)

	session, err := client.RefreshSession(context.Background(), "", "not-a-real-token")

	assert.ErrorIs(t, err, domain.ErrMissingSession)
	assert.Nil(t, session)
}

func TestRefreshSession_ProviderDown(t *testing.T) {
	client, provider := newTestClient(t)
	user := testUser()
	issued := provider.IssueExpiredSession(t, user)
	provider.SetDown(true)

	session, err := client.RefreshSession(context.Background(), issued.AccessToken, issued.RefreshToken)

	assert.ErrorIs(t, err, domain.ErrProviderUnreachable)
	assert.NotErrorIs(t, err, domain.ErrMissingSession)
	assert.Nil(t, session)
}

func TestRefreshSession_ProviderUnreachable(t *testing.T) {
	// Point at a port nothing listens on.
	client := authprovider.NewClient("http://127.0.0.1:1", testutil.TestJWTSecret, time.Second)

	session, err := client.RefreshSession(context.Background(), "", "some-token")

	assert.ErrorIs(t, err, domain.ErrProviderUnreachable)
	assert.Nil(t, session)
}

func TestExchangeCode(t *testing.T) {
	client, provider := newTestClient(t)
	user := testUser()
	provider.AddCode("good-code", user)

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{name: "valid code", code: "good-code"},
		{name: "unknown code", code: "bad-code", wantErr: domain.ErrMissingSession},
		{name: "empty code", code: "", wantErr: domain.ErrMissingSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := client.ExchangeCode(context.Background(), tt.code)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, session.User)
			assert.NotEmpty(t, session.AccessToken)
			assert.NotEmpty(t, session.RefreshToken)
			assert.Equal(t, user.ID, session.User.ID)
		})
	}
}

func TestExchangeCode_BackfillsMissingUser(t *testing.T) {
	client, provider := newTestClient(t)
	user := testUser()
	provider.AddCode("good-code", user)
	provider.SetOmitTokenUser(true)

	session, err := client.ExchangeCode(context.Background(), "good-code")

	require.NoError(t, err)
	require.NotNil(t, session.User, "user must be resolved even when the token response omits it")
	assert.Equal(t, user.ID, session.User.ID)
	assert.Equal(t, user.Email, session.User.Email)
}

func TestSignInWithPassword(t *testing.T) {
	client, provider := newTestClient(t)
	user := testUser()
	provider.AddPassword("dev@mino.local", "password", user)

	session, err := client.SignInWithPassword(context.Background(), "dev@mino.local", "password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)

	_, err = client.SignInWithPassword(context.Background(), "dev@mino.local", "wrong")
	assert.ErrorIs(t, err, domain.ErrMissingSession)
}

func TestAuthorizeURL(t *testing.T) {
	client, provider := newTestClient(t)

	got := client.AuthorizeURL("github", "http://localhost:3000/auth/callback")

	assert.Contains(t, got, provider.URL()+"/authorize?")
	assert.Contains(t, got, "provider=github")
	assert.Contains(t, got, "redirect_to=http%3A%2F%2Flocalhost%3A3000%2Fauth%2Fcallback")
}

func TestMetadataString(t *testing.T) {
	m := authprovider.Metadata{
		"name":  "Jane",
		"count": 3,
	}

	assert.Equal(t, "Jane", m.String("name"))
	assert.Equal(t, "", m.String("count"), "non-string values are ignored")
	assert.Equal(t, "", m.String("missing"))
	assert.Equal(t, "", authprovider.Metadata(nil).String("name"))
}
