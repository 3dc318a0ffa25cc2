// internal/token/token.go
//
// Token codec: issues and verifies the HS256 JWTs handed out on login and
// registration. The payload carries the username and admin flag plus an
// issued-at timestamp; no expiry is set or enforced here.
//
// The signing secret is injected at construction and can be swapped at
// runtime with Rotate. Tokens signed with a previous secret stop verifying.

package token

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by Verify for any token that cannot be trusted.
var ErrInvalidToken = errors.New("token: invalid token")

// Claims is the decoded identity payload of a verified token.
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a shared secret.
type Codec struct {
	mu     sync.RWMutex
	secret []byte
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Rotate replaces the signing secret.
func (c *Codec) Rotate(secret string) {
	c.mu.Lock()
	c.secret = []byte(secret)
	c.mu.Unlock()
}

func (c *Codec) key() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secret
}

// Issue signs a token for the given identity.
func (c *Codec) Issue(username string, isAdmin bool) (string, error) {
	claims := Claims{
		Username: username,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return ss, nil
}

// Verify checks the signature of tok and returns its claims.
// Only HS256 is accepted.
func (c *Codec) Verify(tok string) (*Claims, error) {
	if tok == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return c.key(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
