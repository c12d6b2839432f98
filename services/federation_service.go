package services

import (
	"context"

	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/internal/federation"
	"github.com/confide-dev/confide/internal/metrics"
	"github.com/rs/zerolog/log"
)

// FederationService links external provider identities to local identity
// records. The heavy lifting (consent URL, code exchange, userinfo) lives in
// internal/federation; this service owns the find-or-create step.
type FederationService struct {
	fedService *federation.Service
	userRepo   domain.UserRepository
}

// NewFederationService creates a new FederationService.
func NewFederationService(fedService *federation.Service, userRepo domain.UserRepository) *FederationService {
	return &FederationService{
		fedService: fedService,
		userRepo:   userRepo,
	}
}

// Begin starts the federated login flow, returning the provider consent URL
// and the CSRF state the callback must echo.
func (s *FederationService) Begin(providerName string) (authURL, state string, err error) {
	state, err = s.fedService.GenerateAuthState()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate auth state for federation")
		return "", "", err
	}

	authURL, err = s.fedService.GetAuthorizationURL(providerName, state)
	if err != nil {
		log.Error().Err(err).Str("provider", providerName).Msg("Failed to get authorization URL")
		return "", "", err
	}
	return authURL, state, nil
}

// Callback completes the federated login flow: it validates state, exchanges
// the code, fetches the external profile and resolves it to a local identity
// via an atomic find-or-create. Repeated callbacks for the same subject id
// always land on the same record.
func (s *FederationService) Callback(ctx context.Context, providerName, queryState, sessionState, code string) (*domain.User, error) {
	userInfo, err := s.fedService.HandleCallback(ctx, providerName, queryState, sessionState, code)
	if err != nil {
		log.Warn().Err(err).Str("provider", providerName).Msg("Federated callback rejected")
		return nil, err
	}

	user, err := s.FindOrCreate(ctx, providerName, userInfo.ProviderUserID)
	if err != nil {
		return nil, err
	}

	metrics.FederatedLoginTotal.WithLabelValues(providerName).Inc()
	return user, nil
}

// FindOrCreate resolves a (provider, subjectID) pair to a local identity,
// creating one when unseen. Delegated to the store's atomic upsert; see
// UserRepository.FindOrCreateByProvider.
func (s *FederationService) FindOrCreate(ctx context.Context, providerName, subjectID string) (*domain.User, error) {
	if subjectID == "" {
		return nil, federation.ErrMissingSubjectID
	}

	user, err := s.userRepo.FindOrCreateByProvider(ctx, providerName, subjectID)
	if err != nil {
		log.Error().Err(err).Str("provider", providerName).Msg("Failed to resolve federated identity")
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("userID", user.ID).Msg("Failed to record federated login")
	}
	return user, nil
}
