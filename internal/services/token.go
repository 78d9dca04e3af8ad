package services

import (
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/utils"
)

// TokenService issues and verifies the opaque credential tokens handed
// to authenticated actors.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewTokenService creates a token service with the given secret and TTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// NewTokenServiceFromEnv reads JWT_SECRET and TOKEN_TTL_HOURS.
func NewTokenServiceFromEnv() *TokenService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "lexlink-dev-secret"
	}
	ttl := 24 * time.Hour
	if hours, err := strconv.Atoi(os.Getenv("TOKEN_TTL_HOURS")); err == nil && hours > 0 {
		ttl = time.Duration(hours) * time.Hour
	}
	return NewTokenService(secret, ttl)
}

// Issue creates a signed token for the account.
func (s *TokenService) Issue(account *models.Account) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.AccountID,
			ID:        utils.GenerateSecureID("TK"),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses a token and returns the account ID and role. Any
// invalid or expired token maps to AuthExpired so callers take the
// logout path instead of treating it as a generic failure.
func (s *TokenService) Verify(tokenString string) (accountID, role string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", apperr.Wrap(apperr.KindAuthExpired, "credential token is no longer valid", err)
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return "", "", apperr.New(apperr.KindAuthExpired, "credential token is no longer valid")
	}
	return claims.Subject, claims.Role, nil
}
