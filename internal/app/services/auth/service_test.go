package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rara/internal/app/services/auth"
	domainuser "rara/internal/domain/user"
	"rara/internal/infra/security"
	"rara/internal/infra/storage/memory"
)

func newService(admins ...string) *auth.Service {
	return &auth.Service{
		UoWFactory:  memory.Factory{Store: memory.NewStore()},
		Passwords:   security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:      security.JWTIssuer{Secret: []byte("test-secret"), TTL: time.Hour, Issuer: "rara"},
		AdminEmails: admins,
		Clock:       func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestSignupCreatesGuestAndIssuesToken(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	res, err := svc.Signup(ctx, auth.SignupParams{Email: "  Ana@Rara.dev ", Password: "correct-horse"})
	require.NoError(t, err)

	assert.Equal(t, "ana@rara.dev", res.User.Email)
	assert.Equal(t, "ana", res.User.FirstName)
	assert.True(t, res.User.HasRole(domainuser.RoleGuest))
	assert.False(t, res.User.IsAdmin())
	assert.NotEmpty(t, res.Token)

	user, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
}

func TestSignupRejectsBadInput(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, auth.SignupParams{Email: "ana@rara.dev", Password: "short"})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

	_, err = svc.Signup(ctx, auth.SignupParams{Email: " ", Password: "correct-horse"})
	assert.ErrorIs(t, err, domainuser.ErrEmailRequired)

	_, err = svc.Signup(ctx, auth.SignupParams{Email: "ana@rara.dev", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, auth.SignupParams{Email: "ANA@rara.dev", Password: "correct-horse"})
	assert.ErrorIs(t, err, auth.ErrEmailExists)
}

func TestSignupGrantsAdminToConfiguredEmails(t *testing.T) {
	svc := newService("Admin@Rara.dev")

	res, err := svc.Signup(context.Background(), auth.SignupParams{Email: "admin@rara.dev", Password: "correct-horse"})
	require.NoError(t, err)

	assert.True(t, res.User.IsAdmin())
}

func TestLogin(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, auth.SignupParams{Email: "ana@rara.dev", Password: "correct-horse"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, auth.LoginParams{Email: "ANA@rara.dev", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "ana@rara.dev", Password: "wrong-horse"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, auth.LoginParams{Email: "nobody@rara.dev", Password: "correct-horse"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, auth.LoginParams{Password: "correct-horse"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginPromotesLateAdmin(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, auth.SignupParams{Email: "ops@rara.dev", Password: "correct-horse"})
	require.NoError(t, err)

	svc.AdminEmails = []string{"ops@rara.dev"}
	res, err := svc.Login(ctx, auth.LoginParams{Email: "ops@rara.dev", Password: "correct-horse"})
	require.NoError(t, err)
	assert.True(t, res.User.IsAdmin())

	user, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestGoogleSignIn(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.GoogleSignIn(ctx, auth.GoogleProfile{ID: "g-1", Email: "new@rara.dev", FirstName: "Nia"})
	require.NoError(t, err)
	assert.Equal(t, "Nia", created.User.FirstName)
	assert.Empty(t, created.User.PasswordHash)

	again, err := svc.GoogleSignIn(ctx, auth.GoogleProfile{ID: "g-1", Email: "new@rara.dev"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, again.User.ID)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "new@rara.dev", Password: "anything-at-all"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.GoogleSignIn(ctx, auth.GoogleProfile{Email: "new@rara.dev"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestGoogleSignInLinksExistingAccount(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	local, err := svc.Signup(ctx, auth.SignupParams{Email: "ana@rara.dev", Password: "correct-horse"})
	require.NoError(t, err)

	linked, err := svc.GoogleSignIn(ctx, auth.GoogleProfile{ID: "g-2", Email: "Ana@rara.dev"})
	require.NoError(t, err)

	assert.Equal(t, local.User.ID, linked.User.ID)
	assert.Equal(t, "g-2", linked.User.GoogleID)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, auth.ErrTokenRequired)
	_, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	orphan, err := svc.Tokens.Issue(auth.Claims{UserID: "ghost", Email: "ghost@rara.dev"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
