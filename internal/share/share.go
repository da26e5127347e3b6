// Package share issues and serves read-only links to a week's plan.
package share

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid share token")
	ErrExpiredToken = errors.New("share link has expired")
)

// Claims identify whose plan a link shows and for which week.
type Claims struct {
	WeekKey string `json:"wk"`
	jwt.RegisteredClaims
}

// Owner is the subject of the link.
func (c *Claims) Owner() string {
	return c.Subject
}

// Signer creates and checks HS256 share tokens.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a Signer with the given secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// Issue returns a token for owner's plan of weekKey, valid for ttl.
func (s *Signer) Issue(owner, weekKey string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		WeekKey: weekKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign share token: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns its claims.
func (s *Signer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpiredToken
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.WeekKey == "" {
		return nil, fmt.Errorf("%w: missing owner or week", ErrInvalidToken)
	}
	return claims, nil
}
