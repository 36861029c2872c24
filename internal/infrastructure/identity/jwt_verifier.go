package identity

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/contesthub/contest-service/internal/core/domain"
)

// Config describes the tokens issued by the external identity provider.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
}

// JWTVerifier validates HS256 bearer tokens minted by the identity provider
// and resolves them to the principal's email.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// claims carries the subset of the provider's token the service reads.
type claims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

func NewJWTVerifier(cfg Config) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &JWTVerifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

// Verify returns the normalized email of a valid token. Every failure maps to
// domain.ErrUnauthenticated.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrUnauthenticated
	}

	var c claims
	tkn, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrUnauthenticated
	}

	if c.EmailVerified != nil && !*c.EmailVerified {
		return "", domain.ErrUnauthenticated
	}
	email := domain.NormalizeEmail(c.Email)
	if email == "" {
		return "", domain.ErrUnauthenticated
	}
	return email, nil
}
