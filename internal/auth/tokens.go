package auth

import (
	"errors"
	"fmt"
	"time"

	"centavo/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access from refresh tokens.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

// Pair is what login and refresh hand back to clients.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime, seconds
}

type claims struct {
	Type Kind `json:"type"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	now func() time.Time
}

// NewTokens returns a Tokens signing with secret.
func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{Secret: []byte(secret), AccessTTL: accessTTL, RefreshTTL: refreshTTL, now: time.Now}
}

// Issue signs a fresh access and refresh token for userID.
func (t *Tokens) Issue(userID string) (Pair, error) {
	access, err := t.sign(userID, Access, t.AccessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := t.sign(userID, Refresh, t.RefreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(t.AccessTTL.Seconds()),
	}, nil
}

func (t *Tokens) sign(userID string, kind Kind, ttl time.Duration) (string, error) {
	now := t.clock()
	c := claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Parse verifies token and returns its subject. Any failure, including a
// token of the wrong kind, is core.ErrUnauthorized.
func (t *Tokens) Parse(token string, kind Kind) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrUnauthorized, describe(err))
	}
	if c.Type != kind {
		return "", fmt.Errorf("%w: expected %s token", core.ErrUnauthorized, kind)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", core.ErrUnauthorized)
	}
	return c.Subject, nil
}

func (t *Tokens) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

func describe(err error) string {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "token expired"
	}
	return "invalid token"
}
