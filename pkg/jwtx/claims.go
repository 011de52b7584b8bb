package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Services normally override both from config.
const (
	// DefaultAccessTokenTTL is short so a leaked access token dies quickly.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL keeps a session alive for ten days.
	DefaultRefreshTokenTTL = 10 * 24 * time.Hour
)

// Token types carried in the "token_type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the payload for both token kinds. Access tokens carry the
// profile fields; refresh tokens only carry the account id.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType is TypeAccess or TypeRefresh. Verifiers reject the other kind
	// even when the signature checks out.
	TokenType string `json:"token_type"`

	// AccountID duplicates "sub" under the name clients already expect.
	AccountID string `json:"id"`

	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// NewAccessClaims builds the claims of an access token.
func NewAccessClaims(
	accountID, email, username, fullName string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	c := newClaims(TypeAccess, accountID, issuer, ttl, now)
	c.Email = email
	c.Username = username
	c.FullName = fullName
	return c
}

// NewRefreshClaims builds the claims of a refresh token.
func NewRefreshClaims(accountID, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(TypeRefresh, accountID, issuer, ttl, now)
}

func newClaims(typ, accountID, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenType: typ,
		AccountID: accountID,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two tokens
// minted for the same account in the same second differ only by this value.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer against expected. Empty expected skips the check.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" || c.Issuer == expected {
		return nil
	}
	return ErrIssuer
}

// ValidateType checks the token_type claim.
func (c *Claims) ValidateType(expected string) error {
	if c.TokenType != expected {
		return ErrTokenType
	}
	return nil
}

// ValidateSubject requires a non-empty account id that agrees with "sub".
func (c *Claims) ValidateSubject() error {
	if c.AccountID == "" || c.Subject != c.AccountID {
		return ErrInvalidClaim
	}
	return nil
}
