package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tickScope = "tick"

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// TickAuth mints and checks the HS256 bearer tokens accepted by the tick endpoint.
type TickAuth struct {
	secret []byte
}

func NewTickAuth(secret string) (*TickAuth, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("tick secret is empty")
	}
	return &TickAuth{secret: []byte(secret)}, nil
}

type TickClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Mint signs a token for subject. A zero ttl mints a token that never expires,
// which suits a scheduler configured once.
func (a *TickAuth) Mint(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TickClaims{
		Scope: tickScope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   subject,
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *TickAuth) ParseFromRequest(r *http.Request) (*TickClaims, error) {
	// Authorization: Bearer <jwt>
	hdr := r.Header.Get("Authorization")
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return nil, ErrMissingToken
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *TickAuth) parse(tok string) (*TickClaims, error) {
	claims := &TickClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Scope != tickScope {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
