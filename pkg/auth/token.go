// Package auth verifies bearer tokens and enforces role requirements on routes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

const (
	RoleSuperAdmin        = "super_admin"
	RoleAdmin             = "admin"
	RoleComplianceOfficer = "compliance_officer"
	RoleAuditor           = "auditor"
	RoleUser              = "user"
)

// User is the authenticated caller.
type User struct {
	ID    string
	Email string
	Roles []string
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Claims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret, issuer string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue mints a token for u. A non-positive ttl uses the configured one.
func (t *Tokens) Issue(u User, ttl time.Duration) (string, error) {
	if u.ID == "" {
		return "", domain.NewValidation("sub", "is required")
	}
	if ttl <= 0 {
		ttl = t.ttl
	}
	now := t.now()
	claims := Claims{
		Email: u.Email,
		Roles: u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its user. Every failure matches domain.ErrUnauthorized.
func (t *Tokens) Verify(raw string) (User, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return User{}, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
	case err != nil:
		return User{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	case claims.Subject == "":
		return User{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return User{ID: claims.Subject, Email: claims.Email, Roles: claims.Roles}, nil
}
