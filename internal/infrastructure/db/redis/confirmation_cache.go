package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contesthub/contest-service/internal/core/ports"
)

const defaultConfirmationTTL = 24 * time.Hour

// ConfirmationCache remembers reconciled checkout sessions so replays of the
// success redirect skip the provider round trip.
// Key format: payment:session:<session_id>
type ConfirmationCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewConfirmationCache wraps client; a non-positive ttl falls back to a day.
func NewConfirmationCache(client redis.Cmdable, ttl time.Duration) *ConfirmationCache {
	if ttl <= 0 {
		ttl = defaultConfirmationTTL
	}
	return &ConfirmationCache{client: client, ttl: ttl}
}

type cachedConfirmation struct {
	TransactionID string `json:"transactionId"`
	PaymentID     string `json:"paymentId"`
}

// Get reports a cached confirmation for sessionID. A miss is not an error.
func (c *ConfirmationCache) Get(ctx context.Context, sessionID string) (*ports.ConfirmResult, bool, error) {
	raw, err := c.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("confirmation cache get: %w", err)
	}

	var v cachedConfirmation
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("confirmation cache decode: %w", err)
	}
	return &ports.ConfirmResult{TransactionID: v.TransactionID, PaymentID: v.PaymentID}, true, nil
}

// Put records res for sessionID until the TTL expires.
func (c *ConfirmationCache) Put(ctx context.Context, sessionID string, res ports.ConfirmResult) error {
	raw, err := json.Marshal(cachedConfirmation{TransactionID: res.TransactionID, PaymentID: res.PaymentID})
	if err != nil {
		return fmt.Errorf("confirmation cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key(sessionID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("confirmation cache set: %w", err)
	}
	return nil
}

func key(sessionID string) string {
	return "payment:session:" + sessionID
}
