package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riderlink/internal/app/services/auth"
	"riderlink/internal/domain/participant"
	"riderlink/internal/domain/rider"
	"riderlink/internal/domain/sponsor"
	"riderlink/internal/infra/security"
	"riderlink/internal/infra/session"
	"riderlink/internal/infra/storage/memory"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	return &auth.Service{
		Riders:   memory.NewRiderRepository(),
		Sponsors: memory.NewSponsorRepository(),
		// Minimum cost keeps the hashing in tests fast.
		Passwords:   security.BcryptHasher{Cost: 4},
		Tokens:      security.JWTCodec{Secret: []byte("test-secret")},
		Revocations: session.NewMemoryRevocationStore(),
		SessionTTL:  time.Hour,
	}
}

func riderParams() auth.RegisterParams {
	return auth.RegisterParams{
		UserType:  participant.TypeRider,
		Email:     "Kai@Example.com",
		Password:  "secret-pass",
		Username:  "kai",
		FirstName: "Kai",
		LastName:  "Moreno",
		BirthDate: time.Date(2001, 3, 14, 0, 0, 0, 0, time.UTC),
		Country:   "France",
		Sports:    []string{"BMX"},
	}
}

func TestRegisterAndLoginRider(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	result, err := service.Register(ctx, riderParams())
	require.NoError(t, err)
	assert.Equal(t, participant.TypeRider, result.Participant.UserType)
	assert.NotEmpty(t, result.Token)

	// Email comparison is case-insensitive.
	login, err := service.Login(ctx, participant.TypeRider, "kai@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, result.Participant, login.Participant)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service := newAuthService(t)
	params := riderParams()
	params.Password = "short"
	_, err := service.Register(context.Background(), params)
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, riderParams())
	require.NoError(t, err)

	params := riderParams()
	params.Username = "other"
	_, err = service.Register(ctx, params)
	assert.ErrorIs(t, err, rider.ErrEmailAlreadyUsed)
}

func TestRegisterSponsor(t *testing.T) {
	service := newAuthService(t)
	result, err := service.Register(context.Background(), auth.RegisterParams{
		UserType:    participant.TypeSponsor,
		Email:       "brand@example.com",
		Password:    "secret-pass",
		CompanyName: "Brand Co",
		ContactName: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, participant.TypeSponsor, result.Participant.UserType)

	_, err = service.Register(context.Background(), auth.RegisterParams{
		UserType:    participant.TypeSponsor,
		Email:       "brand@example.com",
		Password:    "secret-pass",
		CompanyName: "Other Co",
	})
	assert.ErrorIs(t, err, sponsor.ErrEmailAlreadyUsed)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()
	_, err := service.Register(ctx, riderParams())
	require.NoError(t, err)

	_, err = service.Login(ctx, participant.TypeRider, "kai@example.com", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = service.Login(ctx, participant.TypeRider, "nobody@example.com", "secret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginIsScopedToUserType(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()
	_, err := service.Register(ctx, riderParams())
	require.NoError(t, err)

	// A rider account does not authenticate as a sponsor.
	_, err = service.Login(ctx, participant.TypeSponsor, "kai@example.com", "secret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestResolveRoundTrip(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	result, err := service.Register(ctx, riderParams())
	require.NoError(t, err)

	resolved, err := service.Resolve(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Participant, resolved)

	_, err = service.Resolve(ctx, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrSessionInvalid)
}

func TestLogoutRevokesSession(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	result, err := service.Register(ctx, riderParams())
	require.NoError(t, err)
	require.NoError(t, service.Logout(ctx, result.Token))

	_, err = service.Resolve(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrSessionInvalid)

	// Logging out twice, or with garbage, never errors.
	assert.NoError(t, service.Logout(ctx, result.Token))
	assert.NoError(t, service.Logout(ctx, "garbage"))
}

func TestResolveRejectsDeactivatedAccount(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	result, err := service.Register(ctx, riderParams())
	require.NoError(t, err)

	profile, err := service.Riders.ByID(ctx, result.Participant.UserID)
	require.NoError(t, err)
	profile.Status = rider.StatusBanned
	require.NoError(t, service.Riders.Save(ctx, profile))

	_, err = service.Resolve(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrSessionInvalid)
}
