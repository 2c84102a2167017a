package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rara/internal/app/services/auth"
)

var ErrSecretRequired = errors.New("security: jwt secret is required")

// JWTIssuer signs HS256 session tokens.
type JWTIssuer struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Clock  func() time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (j JWTIssuer) Issue(claims auth.Claims) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrSecretRequired
	}
	now := j.now()
	ttl := j.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("security: sign jwt: %w", err)
	}
	return signed, nil
}

func (j JWTIssuer) Parse(raw string) (auth.Claims, error) {
	if len(j.Secret) == 0 {
		return auth.Claims{}, ErrSecretRequired
	}
	var claims sessionClaims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now)}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("security: parse jwt: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return auth.Claims{}, errors.New("security: invalid jwt")
	}
	return auth.Claims{UserID: claims.Subject, Email: claims.Email}, nil
}

func (j JWTIssuer) now() time.Time {
	if j.Clock != nil {
		return j.Clock()
	}
	return time.Now()
}

// RandomTokenGenerator produces URL-safe opaque tokens such as OAuth state.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = 32
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: entropy read failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

var _ auth.TokenIssuer = JWTIssuer{}
