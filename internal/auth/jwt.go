package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of tokens minted without an explicit TTL.
const DefaultTTL = 24 * time.Hour

const issuer = "business-dashboard"

// ErrDisabled is returned when no signing secret is configured.
var ErrDisabled = errors.New("token auth is disabled: DASHBOARD_JWT_SECRET not set")

// Claims is the JWT payload for API callers.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Tokens mints and validates HS256 bearer tokens for the dashboard API.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens returns a Tokens for secret. An empty secret yields a disabled
// issuer whose methods return ErrDisabled.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Enabled reports whether a secret is configured.
func (t *Tokens) Enabled() bool {
	return len(t.secret) > 0
}

// Issue mints a token for subject valid for ttl (DefaultTTL when ttl <= 0).
func (t *Tokens) Issue(subject, role string, ttl time.Duration) (string, time.Time, error) {
	if !t.Enabled() {
		return "", time.Time{}, ErrDisabled
	}
	if subject == "" {
		return "", time.Time{}, errors.New("subject is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := t.now()
	expires := now.Add(ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate parses tokenString and returns its claims when the signature,
// algorithm, issuer and expiry all check out.
func (t *Tokens) Validate(tokenString string) (*Claims, error) {
	if !t.Enabled() {
		return nil, ErrDisabled
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
