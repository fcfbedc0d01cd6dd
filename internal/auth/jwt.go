package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "taskweave"

// AccessClaims are the claims carried by access tokens minted by the
// account service. This service only validates them; Mint exists for
// tests and local tooling.
type AccessClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTManager verifies HS256 access tokens against the secret shared with
// the account service.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	parser *jwt.Parser
}

func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Mint signs a fresh access token for the given user.
func (m *JWTManager) Mint(userID, email string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates an access token, returning its claims.
func (m *JWTManager) Verify(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	token, err := m.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verifying access token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("access token is not valid")
	}
	return &claims, nil
}
