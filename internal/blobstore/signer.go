// Package blobstore serves downloadable files through time-limited signed URLs.
package blobstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "storefront-downloads"

var (
	ErrNotFound     = errors.New("blob not found")
	ErrInvalidToken = errors.New("invalid download token")
	ErrExpiredToken = errors.New("download link expired")
)

type claims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 download tokens bound to a blob path.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(key string, ttl time.Duration) (*Signer, error) {
	if len(strings.TrimSpace(key)) < 32 {
		return nil, fmt.Errorf("download signing key must be at least 32 characters")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("download URL TTL must be positive")
	}
	return &Signer{key: []byte(key), ttl: ttl, now: time.Now}, nil
}

// Sign returns a token for path and the time it stops being accepted.
func (s *Signer) Sign(path string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign download token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token signature and expiry and returns the bound path.
func (s *Signer) Verify(token string) (string, error) {
	parsed := &claims{}
	_, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if parsed.Path == "" {
		return "", ErrInvalidToken
	}
	return parsed.Path, nil
}
