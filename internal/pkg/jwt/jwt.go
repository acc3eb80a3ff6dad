package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	claimSessionID = "session_id"
	claimType      = "type"
	tokenTypeSess  = "session"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// Service issues and checks the signed handles that scope requests to one session
type Service interface {
	GenerateSessionToken(sessionID string) (token string, expiresAt time.Time, err error)
	SessionIDFromClaims(claims map[string]any) (string, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	ttl       time.Duration
	now       func() time.Time
}

func NewJWTService(secretKey string, ttl time.Duration) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateSessionToken signs a token carrying the session id
func (j *JWTService) GenerateSessionToken(sessionID string) (token string, expiresAt time.Time, err error) {
	issuedAt := j.now()
	expiresAt = issuedAt.Add(j.ttl)

	_, tokenString, err := j.tokenAuth.Encode(map[string]any{
		claimSessionID: sessionID,
		claimType:      tokenTypeSess,
		"iat":          issuedAt.Unix(),
		"exp":          expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// SessionIDFromClaims checks the token type and extracts the session id
func (j *JWTService) SessionIDFromClaims(claims map[string]any) (string, error) {
	if tokenType, ok := claims[claimType].(string); !ok || tokenType != tokenTypeSess {
		return "", ErrInvalidSessionToken
	}
	sessionID, ok := claims[claimSessionID].(string)
	if !ok || sessionID == "" {
		return "", ErrInvalidSessionToken
	}
	return sessionID, nil
}
