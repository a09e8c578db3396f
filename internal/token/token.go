// Package token issues and validates operator access tokens for the issuance
// endpoints. Tokens are HS256-signed JWTs minted by cmd/tokengen.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "certifica/pkg/domain-errors"
)

const issuer = "certifica"

// OperatorClaims are the JWT claims carried by an operator token.
type OperatorClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// Service handles operator token creation and validation.
type Service struct {
	signingKey []byte
	tokenTTL   time.Duration
}

// NewService creates a token service with the given signing key and TTL.
func NewService(signingKey string, tokenTTL time.Duration) *Service {
	return &Service{signingKey: []byte(signingKey), tokenTTL: tokenTTL}
}

// Generate mints a signed operator token.
func (s *Service) Generate(operator string) (string, error) {
	if operator == "" {
		return "", dErrors.New(dErrors.CodeValidation, "operator name is required")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token id")
	}

	now := time.Now()
	claims := OperatorClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        hex.EncodeToString(b),
			Issuer:    issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signed, nil
}

// Validate parses and verifies an operator token, returning its claims.
func (s *Service) Validate(tokenString string) (*OperatorClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid operator token")
	}

	claims, ok := parsed.Claims.(*OperatorClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid operator token")
	}
	return claims, nil
}
