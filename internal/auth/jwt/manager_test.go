package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk-backend/pkg/config"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

func newTestManager(accessExpiry time.Duration) *Manager {
	return NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  accessExpiry,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "ledgerdesk-test",
	})
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := newTestManager(15 * time.Minute)
	user := &UserInfo{ID: "u-1", Email: "jo@ledgerdesk.co.uk", Name: "Jo Bloggs", Role: "accountant"}

	pair, err := m.GenerateTokenPair(user, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "jo@ledgerdesk.co.uk", claims.Email)
	assert.Equal(t, "accountant", claims.Role)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", refresh.UserID)
	assert.Equal(t, "s-1", refresh.SessionID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	m := newTestManager(-time.Minute)
	pair, err := m.GenerateTokenPair(&UserInfo{ID: "u-1"}, "s-1")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TOKEN_EXPIRED", appErr.Code)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	pair, err := newTestManager(15 * time.Minute).GenerateTokenPair(&UserInfo{ID: "u-1"}, "s-1")
	require.NoError(t, err)

	other := NewManager(&config.JWTConfig{Secret: "different-secret"})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	_, err := newTestManager(15 * time.Minute).ValidateAccessToken("not-a-token")
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}
