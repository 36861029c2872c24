package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contesthub/contest-service/internal/core/ports"
)

// fakeKV implements the two commands the cache issues; any other call panics
// on the nil embedded interface.
type fakeKV struct {
	redis.Cmdable
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestConfirmationCache_RoundTrip(t *testing.T) {
	kv := newFakeKV()
	cache := NewConfirmationCache(kv, time.Hour)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "cs_1")
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, cache.Put(ctx, "cs_1", ports.ConfirmResult{TransactionID: "pi_1", PaymentID: "p1", AlreadyRecorded: true}))
	assert.Equal(t, time.Hour, kv.ttls["payment:session:cs_1"])

	got, ok, err := cache.Get(ctx, "cs_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pi_1", got.TransactionID)
	assert.Equal(t, "p1", got.PaymentID)
	assert.False(t, got.AlreadyRecorded, "the flag is decided by the caller, not stored")
}

func TestConfirmationCache_DefaultTTL(t *testing.T) {
	kv := newFakeKV()
	cache := NewConfirmationCache(kv, 0)

	require.NoError(t, cache.Put(context.Background(), "cs_1", ports.ConfirmResult{TransactionID: "pi_1"}))
	assert.Equal(t, defaultConfirmationTTL, kv.ttls["payment:session:cs_1"])
}

func TestConfirmationCache_Errors(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection reset")
	cache := NewConfirmationCache(kv, time.Hour)

	_, ok, err := cache.Get(context.Background(), "cs_1")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "connection reset")

	kv.getErr = nil
	kv.data["payment:session:cs_2"] = "{not json"
	_, ok, err = cache.Get(context.Background(), "cs_2")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "decode")
}
