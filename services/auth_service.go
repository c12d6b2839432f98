package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/internal/metrics"
	"github.com/rs/zerolog/log"
)

// minPasswordLength is the lower bound of the local credential policy.
const minPasswordLength = 8

// dummyPasswordHash is a valid bcrypt hash compared against when the
// username is unknown, so the unknown-user and wrong-password paths cost
// the same. Its plaintext is not used anywhere.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService implements local credential registration and verification.
type AuthService struct {
	userRepo       domain.UserRepository
	passwordHasher PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo domain.UserRepository, passwordHasher PasswordHasher) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		passwordHasher: passwordHasher,
	}
}

// Register creates a new locally credentialed identity. The username must
// not already own a local credential; the uniqueness index makes the check
// race-free.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || len(password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	hash, err := s.passwordHasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			log.Debug().Str("username", username).Msg("Register: username taken")
			return nil, domain.ErrUsernameTaken
		}
		log.Error().Err(err).Str("username", username).Msg("Register: store write failed")
		return nil, err
	}

	metrics.UserRegisteredTotal.Inc()
	log.Info().Str("userID", user.ID).Msg("User registered")
	return user, nil
}

// Login verifies a local credential pair. Every failure surfaces as
// domain.ErrInvalidCredentials; callers never learn whether the username
// was unknown or the password wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		// Burn a bcrypt compare so the miss costs as much as a mismatch.
		_ = s.passwordHasher.Verify(dummyPasswordHash, password)
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Error().Err(err).Msg("Login: user lookup failed")
		}
		metrics.LoginFailureTotal.Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !user.HasLocalCredential() {
		// Provider-only account; not reachable via local login.
		_ = s.passwordHasher.Verify(dummyPasswordHash, password)
		metrics.LoginFailureTotal.Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.passwordHasher.Verify(user.PasswordHash, password); err != nil {
		log.Debug().Str("userID", user.ID).Msg("Login: password mismatch")
		metrics.LoginFailureTotal.Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		// Bookkeeping only; the login still succeeds.
		log.Warn().Err(err).Str("userID", user.ID).Msg("Login: failed to record last login")
	}

	metrics.LoginSuccessTotal.Inc()
	return user, nil
}
