package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonelm2/PotreroMobile/models"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secreto")
	require.NoError(t, err)

	ok, err := CheckPasswordHash("secreto", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPasswordHash("otro", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPasswordHash("secreto", "not-a-hash")
	assert.Error(t, err)
}

func TestTokenManagerIssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue(&models.User{ID: 42, Username: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)

	actor, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: 42, Role: models.RoleAdmin}, actor)
	assert.True(t, actor.IsAdmin())
}

func TestTokenManagerRejectsBadTokens(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	other := NewTokenManager("other-secret", time.Hour)
	foreign, err := other.Issue(&models.User{ID: 1, Role: models.RoleCoach})
	require.NoError(t, err)
	_, err = m.Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue(&models.User{ID: 1, Role: models.RoleCoach})
	require.NoError(t, err)
	_, err = m.Parse(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID: 1,
		ClaimRole:   "coach",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Parse(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID: 1,
		ClaimRole:   "player",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Parse(badRole)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
