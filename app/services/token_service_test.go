// Package services provides external service integrations and technical concerns like captcha and tokens
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t *testing.T) TokenService {
	t.Helper()
	service, err := NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
	require.NoError(t, err)
	return service
}

func TestNewTokenServiceRejectsMissingSecret(t *testing.T) {
	_, err := NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"",
	)
	assert.Error(t, err)
}

func TestGenerateAndValidateAdminTokens(t *testing.T) {
	service := createTestTokenService(t)

	accessToken, refreshToken, err := service.GenerateAdminTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	claims, err := service.ValidateAdminToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AdminID)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)

	refreshClaims, err := service.ValidateAdminToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestValidateAdminTokenRejectsGarbage(t *testing.T) {
	service := createTestTokenService(t)

	_, err := service.ValidateAdminToken("not-a-jwt")
	assert.Error(t, err)
}

func TestValidateAdminTokenRejectsForeignSignature(t *testing.T) {
	service := createTestTokenService(t)

	other, err := NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"a-completely-different-signing-secret-key",
	)
	require.NoError(t, err)

	accessToken, _, err := other.GenerateAdminTokens(42)
	require.NoError(t, err)

	_, err = service.ValidateAdminToken(accessToken)
	assert.Error(t, err)
}

func TestRevokeTokenBlocksValidation(t *testing.T) {
	service := createTestTokenService(t)

	accessToken, _, err := service.GenerateAdminTokens(7)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(accessToken))

	_, err = service.ValidateAdminToken(accessToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshAdminTokenRotates(t *testing.T) {
	service := createTestTokenService(t)

	_, refreshToken, err := service.GenerateAdminTokens(7)
	require.NoError(t, err)

	newAccess, newRefresh, err := service.RefreshAdminToken(refreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)

	claims, err := service.ValidateAdminToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.AdminID)

	// The used refresh token is revoked and cannot be replayed.
	_, _, err = service.RefreshAdminToken(refreshToken)
	assert.Error(t, err)
}

func TestRefreshAdminTokenRejectsAccessToken(t *testing.T) {
	service := createTestTokenService(t)

	accessToken, _, err := service.GenerateAdminTokens(7)
	require.NoError(t, err)

	_, _, err = service.RefreshAdminToken(accessToken)
	assert.Error(t, err)
}
