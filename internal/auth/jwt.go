// Package auth issues and verifies bearer tokens for the control server.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Control server roles. An operator may also do everything a viewer can.
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
)

const issuer = "hubcenter-scraper"

// Claims is the payload of a control token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenManager handles issuing and verifying HMAC signed control tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a manager with the given secret and token lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for subject with the given role.
func (m *TokenManager) Issue(subject, role string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("control secret must not be empty")
	}
	if role != RoleViewer && role != RoleOperator {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the signature, issuer and expiry of token.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Allows reports whether a token role grants the required role.
func Allows(have, need string) bool {
	switch need {
	case RoleViewer:
		return have == RoleViewer || have == RoleOperator
	case RoleOperator:
		return have == RoleOperator
	default:
		return false
	}
}
