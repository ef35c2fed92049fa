package service

import (
	"context"
	"testing"

	"tileledger/internal/config"
	"tileledger/internal/dto"
	"tileledger/internal/infra"
	"tileledger/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (AuthService, repository.Store, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:           "test-secret",
		JWTExpirationHours:  2,
		AuthUsername:        " Owner ",
		AuthDefaultPassword: "1234",
	}
	store := repository.NewMemoryStore()
	return NewAuthService(store, infra.NewLocalLocker(), cfg), store, cfg
}

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, 32)

	hash, err := HashPassword("s3cret", salt)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	assert.True(t, VerifyPassword("s3cret", salt, hash))
	assert.False(t, VerifyPassword("s3cret!", salt, hash))
	assert.False(t, VerifyPassword("s3cret", "zz-not-hex", hash))

	other, err := NewSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt, other)
	assert.False(t, VerifyPassword("s3cret", other, hash))
}

func TestEnsureUser_CreatesOnce(t *testing.T) {
	svc, store, _ := newAuthFixture(t)
	ctx := context.Background()

	created, err := svc.EnsureUser(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	users, err := store.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "owner", users[0].Username)
	assert.True(t, VerifyPassword("1234", users[0].Salt, users[0].PasswordHash))
}

func TestLogin(t *testing.T) {
	svc, _, cfg := newAuthFixture(t)
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "OWNER", Password: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 7200, resp.ExpiresIn)
	assert.Equal(t, "owner", resp.Username)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "owner", claims["sub"])

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "owner", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "intruder", Password: "1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "only the allow-listed user may log in")
}

func TestLogin_NoUserYet(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "owner", Password: "1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
