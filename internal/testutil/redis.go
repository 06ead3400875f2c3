// Package testutil provides testing utilities for Redis integration tests.
//
// Environment Variables:
//
// The Redis address can be customized via environment variables:
//   - TEST_REDIS_ADDR: Redis address (default: localhost:6379)
//
// Redis Setup:
//
//	client := testutil.SetupRedis(t)
//
// The client connects to a dedicated logical database which is flushed before
// and after each test, so tests never see each other's keys and never touch
// the default database.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	// Default test Redis address (can be overridden via environment variable)
	defaultRedisTestAddr = "localhost:6379"

	// Dedicated logical database for tests, kept away from the default DB 0
	redisTestDB = 15
)

// GetRedisTestAddr returns the Redis test address, checking environment variable first.
func GetRedisTestAddr() string {
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return defaultRedisTestAddr
}

// SetupRedis creates a Redis client against the test database and flushes it.
// The database is flushed again and the client closed when the test finishes.
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        GetRedisTestAddr(),
		DB:          redisTestDB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Ping(ctx).Err()
	require.NoError(t, err, "failed to ping redis test database")

	err = client.FlushDB(ctx).Err()
	require.NoError(t, err, "failed to flush redis test database")

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()

		if err := client.FlushDB(cleanupCtx).Err(); err != nil {
			t.Logf("Warning: failed to flush redis test database: %v", err)
		}
		if err := client.Close(); err != nil {
			t.Logf("Warning: failed to close redis client: %v", err)
		}
	})

	return client
}
