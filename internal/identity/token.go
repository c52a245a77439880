package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors.
var (
	ErrMissingToken  = errors.New("missing identity token")
	ErrInvalidToken  = errors.New("invalid identity token")
	ErrMissingSecret = errors.New("token secret is not configured")
)

// TokenConfig holds the parameters used to sign and verify identity tokens.
type TokenConfig struct {
	Secret string
	Issuer string
}

// Claims is the normalized payload of an identity token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// ParseToken validates an HS256 token and returns its claims. The subject is the owner id.
func ParseToken(token string, cfg TokenConfig) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return nil, ErrInvalidToken
	}

	out := &Claims{Subject: subject}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// IssueToken signs a token naming ownerID as its subject. A zero ttl issues a token without expiry.
func IssueToken(ownerID string, cfg TokenConfig, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", ErrOwnerMissing
	}
	if cfg.Secret == "" {
		return "", ErrMissingSecret
	}

	claims := jwt.MapClaims{
		"sub": ownerID,
		"iat": now.Unix(),
	}
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// FromToken verifies token and returns a provider for its subject.
func FromToken(token string, cfg TokenConfig) (Static, error) {
	claims, err := ParseToken(token, cfg)
	if err != nil {
		return "", err
	}
	return Static(claims.Subject), nil
}
