package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gstin-gateway/internal/domain"
)

const testGSTIN = "29AABCT1332L1Z5"

func testResult() domain.VerificationResult {
	legalName := "ACME PVT LTD"
	return domain.VerificationResult{
		GSTIN:     testGSTIN,
		LegalName: &legalName,
		Status:    "Active",
		Raw:       map[string]any{"legal_name": "ACME PVT LTD", "status": "Active"},
	}
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func TestMemoryExpiresAtTTL(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	c := NewMemory(clock)
	ctx := context.Background()

	c.Set(ctx, testGSTIN, testResult(), time.Hour)

	got, ok := c.Get(ctx, testGSTIN)
	require.True(t, ok)
	assert.Equal(t, testResult(), got)

	clock.now = clock.now.Add(time.Hour - time.Second)
	_, ok = c.Get(ctx, testGSTIN)
	assert.True(t, ok)

	clock.now = clock.now.Add(time.Second)
	_, ok = c.Get(ctx, testGSTIN)
	assert.False(t, ok)
}

func TestMemoryOverwriteRefreshesExpiry(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	c := NewMemory(clock)
	ctx := context.Background()

	c.Set(ctx, testGSTIN, testResult(), time.Minute)
	clock.now = clock.now.Add(50 * time.Second)

	updated := testResult()
	updated.Status = "Inactive"
	c.Set(ctx, testGSTIN, updated, time.Minute)
	clock.now = clock.now.Add(50 * time.Second)

	got, ok := c.Get(ctx, testGSTIN)
	require.True(t, ok)
	assert.Equal(t, "Inactive", got.Status)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryIgnoresNonPositiveTTL(t *testing.T) {
	t.Parallel()

	c := NewMemory(nil)
	c.Set(context.Background(), testGSTIN, testResult(), 0)

	_, ok := c.Get(context.Background(), testGSTIN)
	assert.False(t, ok)
}

func TestRedisRoundTripAndExpiry(t *testing.T) {
	t.Parallel()

	instance := miniredis.RunT(t)
	ctx := context.Background()
	client, err := Open(ctx, "redis://"+instance.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, client.Close()) })

	c := NewRedis(client)

	_, ok := c.Get(ctx, testGSTIN)
	assert.False(t, ok)

	c.Set(ctx, testGSTIN, testResult(), time.Minute)
	assert.True(t, instance.Exists(redisKeyPrefix+testGSTIN))

	got, ok := c.Get(ctx, testGSTIN)
	require.True(t, ok)
	assert.Equal(t, testGSTIN, got.GSTIN)
	require.NotNil(t, got.LegalName)
	assert.Equal(t, "ACME PVT LTD", *got.LegalName)
	assert.Nil(t, got.TradeName)
	assert.Equal(t, "Active", got.Raw["status"])

	instance.FastForward(time.Minute)
	_, ok = c.Get(ctx, testGSTIN)
	assert.False(t, ok)
}

func TestRedisFailureIsAMiss(t *testing.T) {
	t.Parallel()

	instance := miniredis.RunT(t)
	ctx := context.Background()
	client, err := Open(ctx, "redis://"+instance.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedis(client)
	c.Set(ctx, testGSTIN, testResult(), time.Minute)
	instance.Close()

	_, ok := c.Get(ctx, testGSTIN)
	assert.False(t, ok)
}

func TestOpenRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "not-a-redis-url")
	require.Error(t, err)
}
