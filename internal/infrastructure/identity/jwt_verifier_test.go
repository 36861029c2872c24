package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contesthub/contest-service/internal/core/domain"
)

const testSecret = "secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, c jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"email":          "Alice@Example.com",
		"email_verified": true,
		"iss":            "https://id.example.com",
		"aud":            "contest-hub",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func newVerifier() *JWTVerifier {
	return NewJWTVerifier(Config{Secret: testSecret, Issuer: "https://id.example.com", Audience: "contest-hub"})
}

func TestVerify_ValidToken(t *testing.T) {
	email, err := newVerifier().Verify(context.Background(), sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestVerify_Rejects(t *testing.T) {
	cases := map[string]func(jwt.MapClaims){
		"expired":        func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Minute).Unix() },
		"no expiry":      func(c jwt.MapClaims) { delete(c, "exp") },
		"wrong issuer":   func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" },
		"wrong audience": func(c jwt.MapClaims) { c["aud"] = "other" },
		"no email":       func(c jwt.MapClaims) { delete(c, "email") },
		"unverified":     func(c jwt.MapClaims) { c["email_verified"] = false },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validClaims()
			mutate(c)
			_, err := newVerifier().Verify(context.Background(), sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	_, err := newVerifier().Verify(context.Background(), sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims()))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerify_WrongAlgorithm(t *testing.T) {
	_, err := newVerifier().Verify(context.Background(), sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerify_Garbage(t *testing.T) {
	for _, tok := range []string{"", "   ", "not-a-token"} {
		_, err := newVerifier().Verify(context.Background(), tok)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	}
}
