package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrates/internal/config"
	"gstrates/internal/domain"
	"gstrates/internal/service"
)

var authCfg = &config.AuthConfig{Secret: "test-secret", Issuer: "gstrates", TokenExpiry: time.Hour}

func TestTokenService_MintAndValidate(t *testing.T) {
	svc := service.NewTokenService(authCfg)

	token, expiresAt, err := svc.Mint("ops@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "ops@example.com", claims.Subject)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	token, _, err := service.NewTokenService(&config.AuthConfig{
		Secret: "other", Issuer: "gstrates", TokenExpiry: time.Hour,
	}).Mint("x")
	require.NoError(t, err)

	_, err = service.NewTokenService(authCfg).ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	token, _, err := service.NewTokenService(&config.AuthConfig{
		Secret: "test-secret", Issuer: "gstrates", TokenExpiry: -time.Minute,
	}).Mint("x")
	require.NoError(t, err)

	_, err = service.NewTokenService(authCfg).ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_RejectsNoneAlgorithm(t *testing.T) {
	claims := &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gstrates",
			Audience:  jwt.ClaimStrings{"admin"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: domain.RoleAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.NewTokenService(authCfg).ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
