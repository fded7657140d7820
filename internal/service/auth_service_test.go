package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthServiceVerifiesSignature(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "s3cret"}, nil)
	token := signToken(t, "s3cret", models.JWTClaims{
		UserID:           "admin-1",
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})

	p, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, models.Principal{UserID: "admin-1", Role: models.RoleAdmin, Token: token}, p)

	_, err = svc.Authenticate(signToken(t, "other", models.JWTClaims{UserID: "x"}))
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "s3cret"}, nil)
	token := signToken(t, "s3cret", models.JWTClaims{
		UserID:           "admin-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})

	_, err := svc.ValidateToken(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceUnverifiedMode(t *testing.T) {
	svc := NewAuthService(AuthConfig{}, nil)
	assert.False(t, svc.Verifying())
	assert.Equal(t, models.RoleAdmin, svc.AdminRole())

	token := signToken(t, "whatever", models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "student-7"}})
	p, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "student-7", p.UserID)

	p, err = svc.Authenticate("opaque-session-token")
	require.NoError(t, err)
	assert.Equal(t, "", p.UserID)
	assert.Equal(t, "token:opaque-session-token", p.SessionKey())

	_, err = svc.Authenticate("  ")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
