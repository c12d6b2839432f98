package federation

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// ProviderConfig holds the static configuration for one external provider,
// loaded from the application config at startup.
type ProviderConfig struct {
	Name         string // e.g. "google", "facebook"
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Enabled reports whether the provider has credentials configured.
func (c ProviderConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ExternalUserInfo holds standardized user information retrieved from an
// external OAuth2 provider. Only the subject id is required downstream; the
// rest is kept for logging and future profile use.
type ExternalUserInfo struct {
	ProviderUserID string // Unique ID of the user within the provider (e.g. Google's 'sub')
	Email          string
	Name           string
	PictureURL     string
	RawData        map[string]any
}

// OAuth2Provider defines the interface for an external OAuth2 identity
// provider. Implementations handle provider-specific endpoints and the shape
// of the userinfo response.
type OAuth2Provider interface {
	// Name returns the unique identifier for the provider (e.g. "google").
	Name() string

	// GetOAuth2Config returns the oauth2.Config for this provider with the
	// given redirect URL applied.
	GetOAuth2Config(redirectURL string) (*oauth2.Config, error)

	// GetAuthCodeURL generates the consent URL the user is redirected to.
	// state is the CSRF token the callback must echo back.
	GetAuthCodeURL(state, redirectURL string, opts ...oauth2.AuthCodeOption) (string, error)

	// ExchangeCode exchanges an authorization code for an OAuth2 token.
	ExchangeCode(ctx context.Context, redirectURL, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

	// FetchUserInfo uses an access token to retrieve user information.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*ExternalUserInfo, error)

	// GetHttpClient returns an *http.Client authenticated with the token.
	GetHttpClient(ctx context.Context, token *oauth2.Token) *http.Client
}

// BaseProvider provides a common partial implementation of OAuth2Provider.
// Specific providers embed it and supply their endpoints and userinfo
// parsing.
type BaseProvider struct {
	Config   ProviderConfig
	Endpoint oauth2.Endpoint
}

func NewBaseProvider(cfg ProviderConfig, endpoint oauth2.Endpoint) *BaseProvider {
	return &BaseProvider{Config: cfg, Endpoint: endpoint}
}

func (b *BaseProvider) Name() string {
	return b.Config.Name
}

// GetOAuth2Config constructs an oauth2.Config from the provider configuration.
func (b *BaseProvider) GetOAuth2Config(redirectURL string) (*oauth2.Config, error) {
	if !b.Config.Enabled() {
		return nil, ErrProviderMisconfigured
	}
	return &oauth2.Config{
		ClientID:     b.Config.ClientID,
		ClientSecret: b.Config.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       b.Config.Scopes,
		Endpoint:     b.Endpoint,
	}, nil
}

func (b *BaseProvider) GetAuthCodeURL(state, redirectURL string, opts ...oauth2.AuthCodeOption) (string, error) {
	conf, err := b.GetOAuth2Config(redirectURL)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, opts...), nil
}

func (b *BaseProvider) ExchangeCode(ctx context.Context, redirectURL, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	conf, err := b.GetOAuth2Config(redirectURL)
	if err != nil {
		return nil, err
	}
	return conf.Exchange(ctx, code, opts...)
}

func (b *BaseProvider) GetHttpClient(ctx context.Context, token *oauth2.Token) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
}
