package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/confide-dev/confide/domain"
	"golang.org/x/oauth2"
	facebookOAuth2 "golang.org/x/oauth2/facebook"
)

// FacebookUserInfoEndpoint is the Graph API endpoint for the current user.
// The fields parameter selects what data to retrieve. Variable for tests.
var FacebookUserInfoEndpoint = "https://graph.facebook.com/me?fields=id,name,email,picture"

var defaultFacebookScopes = []string{"public_profile", "email"}

// FacebookProvider implements the OAuth2Provider interface for Facebook.
type FacebookProvider struct {
	*BaseProvider
}

// NewFacebookProvider creates a new FacebookProvider from the given config.
func NewFacebookProvider(cfg ProviderConfig) (*FacebookProvider, error) {
	if cfg.Name == "" {
		cfg.Name = domain.ProviderFacebook
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = defaultFacebookScopes
	}
	return &FacebookProvider{
		BaseProvider: NewBaseProvider(cfg, facebookOAuth2.Endpoint),
	}, nil
}

// FetchUserInfo retrieves the authenticated user's profile from the Graph API.
func (f *FacebookProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*ExternalUserInfo, error) {
	client := f.GetHttpClient(ctx, token)
	resp, err := client.Get(FacebookUserInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from Facebook: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Facebook user info response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch user info from Facebook: status %d, body: %s", resp.StatusCode, string(rawBody))
	}

	var rawUserInfo struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.Unmarshal(rawBody, &rawUserInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Facebook user info: %w", err)
	}
	if rawUserInfo.ID == "" {
		return nil, ErrMissingSubjectID
	}

	var rawDataMap map[string]any
	_ = json.Unmarshal(rawBody, &rawDataMap)

	return &ExternalUserInfo{
		ProviderUserID: rawUserInfo.ID,
		Email:          rawUserInfo.Email,
		Name:           rawUserInfo.Name,
		PictureURL:     rawUserInfo.Picture.Data.URL,
		RawData:        rawDataMap,
	}, nil
}
