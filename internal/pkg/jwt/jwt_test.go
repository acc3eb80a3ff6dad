package jwt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// verify checks a token the way the router does: jwtauth verification, then
// the claims check.
func verify(svc Service, tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}
	return svc.SessionIDFromClaims(claims)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateSessionToken("abc-123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	sessionID, err := verify(svc, token)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", sessionID)
}

func TestSessionToken_Rejected(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	other := NewJWTService("other-secret", time.Hour)

	foreign, _, err := other.GenerateSessionToken("abc-123")
	require.NoError(t, err)
	_, err = verify(svc, foreign)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	expired := NewJWTService("test-secret", -time.Hour)
	old, _, err := expired.GenerateSessionToken("abc-123")
	require.NoError(t, err)
	_, err = verify(svc, old)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	_, err = verify(svc, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	_, tokenString, err := svc.JWTAuth().Encode(map[string]any{"session_id": "abc-123", "type": "access"})
	require.NoError(t, err)
	_, err = verify(svc, tokenString)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}
