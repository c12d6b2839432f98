package federation

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Service handles the core logic for OAuth2 federation: generating consent
// URLs, validating callback state, exchanging codes and fetching profiles.
type Service struct {
	providerRegistry map[string]OAuth2Provider
	publicBaseURL    string // e.g. "http://localhost:3000"
}

// NewService creates a new federation Service. publicBaseURL is the external
// base URL of this application; provider callbacks are derived from it.
func NewService(publicBaseURL string) *Service {
	return &Service{
		providerRegistry: make(map[string]OAuth2Provider),
		publicBaseURL:    strings.TrimRight(publicBaseURL, "/"),
	}
}

// RegisterProvider adds a provider implementation to the service.
func (s *Service) RegisterProvider(provider OAuth2Provider) {
	s.providerRegistry[provider.Name()] = provider
}

// GetProvider retrieves a registered provider by name.
func (s *Service) GetProvider(providerName string) (OAuth2Provider, error) {
	provider, ok := s.providerRegistry[providerName]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return provider, nil
}

// GenerateAuthState generates a unique, unguessable string for the state
// parameter.
func (s *Service) GenerateAuthState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GetAuthorizationURL constructs the URL to redirect the user to for
// authentication with the external provider.
func (s *Service) GetAuthorizationURL(providerName, state string, opts ...oauth2.AuthCodeOption) (string, error) {
	provider, err := s.GetProvider(providerName)
	if err != nil {
		return "", err
	}
	return provider.GetAuthCodeURL(state, s.RedirectURLForProvider(providerName), opts...)
}

// HandleCallback processes the callback from the external provider. It
// validates the state echoed in the callback against the one stored at flow
// start, exchanges the authorization code for a token, and fetches the
// user's profile.
func (s *Service) HandleCallback(
	ctx context.Context,
	providerName string,
	queryState string,
	sessionState string, // CSRF validation
	code string,
	opts ...oauth2.AuthCodeOption,
) (*ExternalUserInfo, error) {
	if queryState == "" || queryState != sessionState {
		return nil, ErrInvalidAuthState
	}

	provider, err := s.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	token, err := provider.ExchangeCode(ctx, s.RedirectURLForProvider(providerName), code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeCodeFailed, err)
	}

	userInfo, err := provider.FetchUserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUserInfoFailed, err)
	}

	return userInfo, nil
}

// RedirectURLForProvider constructs the callback URL registered with a
// provider, e.g. http://localhost:3000/auth/google/secrets.
func (s *Service) RedirectURLForProvider(providerName string) string {
	return fmt.Sprintf("%s/auth/%s/secrets", s.publicBaseURL, url.PathEscape(providerName))
}
