package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret")

	token, err := tm.GenerateToken("session-1", 42, time.Now())
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.EqualValues(t, 42, claims.UserID)
}

func TestTokenRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("one").GenerateToken("session-1", 42, time.Now())
	require.NoError(t, err)

	_, err = NewTokenManager("two").ParseToken(token)
	assert.Error(t, err)

	_, err = NewTokenManager("one").ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("admin123", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "admin123"))
	assert.Error(t, ComparePassword(hash, "admin124"))
}
