// Package signing wraps request bodies in short-lived HS256 tokens shared
// with the backend.
package signing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is used when the configured expiry cannot be parsed
const DefaultTTL = time.Hour

// ParseTTL converts "<n>s", "<n>m" or "<n>h" into a duration. Anything else
// yields DefaultTTL.
func ParseTTL(s string) time.Duration {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return DefaultTTL
	}

	var unit time.Duration
	switch s[len(s)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	default:
		return DefaultTTL
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return DefaultTTL
	}
	return time.Duration(n) * unit
}

type claims struct {
	Data interface{} `json:"data"`
	jwt.RegisteredClaims
}

type verifiedClaims struct {
	Data json.RawMessage `json:"data"`
	jwt.RegisteredClaims
}

// Payload is the content of a verified token
type Payload struct {
	Data      json.RawMessage
	ExpiresAt time.Time
}

// Signer produces and verifies signed envelopes
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer for the shared secret and expiry string
func NewSigner(secret, expiresIn string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	return &Signer{
		secret: []byte(secret),
		ttl:    ParseTTL(expiresIn),
		now:    time.Now,
	}, nil
}

// TTL returns the token lifetime
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token whose payload is {data, exp}
func (s *Signer) Sign(data interface{}) (string, error) {
	c := claims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}
	return token, nil
}

// Verify checks the signature and expiry of token
func (s *Signer) Verify(token string) (*Payload, error) {
	var c verifiedClaims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	return &Payload{
		Data:      c.Data,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
