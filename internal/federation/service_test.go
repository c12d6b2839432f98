package federation_test

import (
	"context"
	"testing"

	"github.com/confide-dev/confide/internal/federation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *federation.Service {
	t.Helper()
	svc := federation.NewService("http://localhost:3000/")

	google, err := federation.NewGoogleProvider(federation.ProviderConfig{
		ClientID:     "g-client",
		ClientSecret: "g-secret",
	})
	require.NoError(t, err)
	svc.RegisterProvider(google)

	facebook, err := federation.NewFacebookProvider(federation.ProviderConfig{
		ClientID:     "f-client",
		ClientSecret: "f-secret",
	})
	require.NoError(t, err)
	svc.RegisterProvider(facebook)

	return svc
}

func TestService_RedirectURLForProvider(t *testing.T) {
	svc := newTestService(t)

	assert.Equal(t, "http://localhost:3000/auth/google/secrets", svc.RedirectURLForProvider("google"))
	assert.Equal(t, "http://localhost:3000/auth/facebook/secrets", svc.RedirectURLForProvider("facebook"))
}

func TestService_GetAuthorizationURL(t *testing.T) {
	svc := newTestService(t)

	state, err := svc.GenerateAuthState()
	require.NoError(t, err)
	require.NotEmpty(t, state)

	// State values are unguessable, so two calls should differ.
	state2, err := svc.GenerateAuthState()
	require.NoError(t, err)
	assert.NotEqual(t, state, state2)

	authURL, err := svc.GetAuthorizationURL("google", state)
	require.NoError(t, err)
	assert.Contains(t, authURL, "accounts.google.com")

	_, err = svc.GetAuthorizationURL("unknown", state)
	assert.ErrorIs(t, err, federation.ErrProviderNotFound)
}

func TestService_HandleCallback_StateMismatch(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "google", "state-a", "state-b", "code")
	assert.ErrorIs(t, err, federation.ErrInvalidAuthState)

	_, err = svc.HandleCallback(context.Background(), "google", "", "", "code")
	assert.ErrorIs(t, err, federation.ErrInvalidAuthState)
}
