package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret     = errors.New("auth.go: JWT secret key not set")
	ErrInvalidToken = errors.New("invalid token")
)

const shareAudience = "mindmap-share"

// ShareSigner issues and checks HS256 tokens that grant read access to one
// saved mind map, so private maps can be shared by link.
type ShareSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewShareSigner(secret string, ttl time.Duration) (*ShareSigner, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &ShareSigner{secret: []byte(secret), ttl: ttl}, nil
}

func (s *ShareSigner) CreateToken(mindMapID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   mindMapID,
		Audience:  jwt.ClaimStrings{shareAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	return token.SignedString(s.secret)
}

// VerifyToken returns the public id of the mind map the token was issued for.
func (s *ShareSigner) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(shareAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
