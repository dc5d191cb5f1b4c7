package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is stamped on every token minted by Tokens.
const Issuer = "lifedots"

var (
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed or forged tokens.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissing is returned when a request carries no bearer token.
	ErrTokenMissing = errors.New("bearer token missing")
)

// Tokens mints and verifies HS256 bearer tokens whose subject is the user id.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens returns a token manager for secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for userID. A zero ttl never expires.
func (t *Tokens) Issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("token subject required")
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Subject:  userID,
		Issuer:   Issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies raw and returns the user id it was issued for.
func (t *Tokens) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// FromRequest verifies the bearer token of r and returns its user id.
func (t *Tokens) FromRequest(r *http.Request) (string, error) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrTokenMissing
	}
	return t.Parse(strings.TrimSpace(parts[1]))
}
