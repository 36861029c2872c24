package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"IDENTITY_SECRET":   "s3cret",
		"STRIPE_SECRET_KEY": "sk_test_123",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "contest_hub", cfg.Mongo.Database)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.Equal(t, 10*time.Second, cfg.Stripe.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":               "production",
		"CLIENT_DOMAIN":     "https://contests.example.com/",
		"IDENTITY_SECRET":   "s3cret",
		"IDENTITY_ISSUER":   "https://id.example.com",
		"STRIPE_SECRET_KEY": "sk_live_1",
		"PAYMENT_CACHE_TTL": "1h",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "https://contests.example.com", cfg.ClientDomain)
	assert.Equal(t, "https://id.example.com", cfg.Identity.Issuer)
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL)
}

func TestLoadWith_MissingSecrets(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}
