package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted by the HS256 signer
// and verifier.
const MinSecretLength = 16

// ErrWeakSecret is returned when an HS256 secret is shorter than MinSecretLength.
var ErrWeakSecret = errors.New("jwtx: secret too short")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs one kind of token with a shared secret. Access and
// refresh tokens each get their own signer and secret.
type HS256Signer struct {
	secret    []byte
	tokenType string
}

// NewSignerHS256 returns a signer that stamps every token with tokenType.
func NewSignerHS256(secret []byte, tokenType string) (*HS256Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}
	return &HS256Signer{secret: secret, tokenType: tokenType}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	claims.TokenType = s.tokenType

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}
