package services_test

import (
	"context"
	"testing"

	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/internal/auth"
	"github.com/confide-dev/confide/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(repo *fakeUserRepo) *services.AuthService {
	// bcrypt.MinCost keeps the test suite fast.
	return services.NewAuthService(repo, auth.NewBcryptPasswordHasher(4))
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(ctx, "alice", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.True(t, user.HasLocalCredential())

	loggedIn, err := svc.Login(ctx, "alice", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = svc.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(ctx, "alice", "first password")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "second password")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	// The first account's credential is unaffected.
	_, err = svc.Login(ctx, "alice", "first password")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "alice", "second password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_WeakPassword(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Register(ctx, "bob", "short")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = svc.Register(ctx, "", "long enough password")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestAuthService_UniformLoginFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(ctx, "alice", "correct horse battery")
	require.NoError(t, err)

	// Unknown user and wrong password yield the identical error value.
	_, unknownErr := svc.Login(ctx, "nobody", "whatever password")
	_, wrongErr := svc.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)

	// Store failures on the lookup path also collapse into the same error.
	repo.failReads = true
	_, storeErr := svc.Login(ctx, "alice", "correct horse battery")
	assert.ErrorIs(t, storeErr, domain.ErrInvalidCredentials)
}

func TestAuthService_ProviderOnlyAccountNotLocallyLoginable(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := repo.FindOrCreateByProvider(ctx, domain.ProviderGoogle, "subject-1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "", "any password at all")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
