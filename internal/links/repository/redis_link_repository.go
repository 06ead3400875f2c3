// Package repository implements link record persistence on Redis.
//
// Redis covers every store guarantee the engine needs natively: per-key TTL
// with autonomous expiry, SET NX for atomic create-if-absent, and GETDEL for
// atomic consume-on-read.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/securelink/internal/errors"
	linksDomain "github.com/allisson/securelink/internal/links/domain"
)

// linkKeyPrefix namespaces link records in the shared Redis keyspace.
const linkKeyPrefix = "link:"

// RedisLinkRepository persists link records as JSON documents under
// "link:<code>" keys with the TTL applied to the Redis key itself.
type RedisLinkRepository struct {
	client *redis.Client
}

// NewRedisLinkRepository creates a new Redis-backed link repository.
func NewRedisLinkRepository(client *redis.Client) *RedisLinkRepository {
	return &RedisLinkRepository{client: client}
}

// Create atomically persists a record under its code with the given TTL.
//
// Uses SET NX so an existing live key is never overwritten: a concurrent
// Generate that picked the same code loses with ErrCodeExists instead of
// silently clobbering the winner's record.
func (r *RedisLinkRepository) Create(
	ctx context.Context,
	record *linksDomain.LinkRecord,
	ttl time.Duration,
) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal link record: %w", err)
	}

	ok, err := r.client.SetNX(ctx, linkKeyPrefix+record.Code, data, ttl).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if !ok {
		return linksDomain.ErrCodeExists
	}

	return nil
}

// Get retrieves the record stored under code.
//
// Returns ErrLinkNotFound for a missing key; never-existed, expired, and
// deleted records are indistinguishable by design.
func (r *RedisLinkRepository) Get(ctx context.Context, code string) (*linksDomain.LinkRecord, error) {
	data, err := r.client.Get(ctx, linkKeyPrefix+code).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, linksDomain.ErrLinkNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	return unmarshalRecord(data)
}

// Consume atomically retrieves and deletes the record stored under code.
//
// Backed by GETDEL, so of two racing consumers exactly one receives the
// record and the other gets ErrLinkNotFound. This is what makes one-time-use
// links single-validate under concurrency.
func (r *RedisLinkRepository) Consume(ctx context.Context, code string) (*linksDomain.LinkRecord, error) {
	data, err := r.client.GetDel(ctx, linkKeyPrefix+code).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, linksDomain.ErrLinkNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	return unmarshalRecord(data)
}

// Delete removes the record stored under code. Deleting an absent code is not
// an error; deletion is idempotent.
func (r *RedisLinkRepository) Delete(ctx context.Context, code string) error {
	if err := r.client.Del(ctx, linkKeyPrefix+code).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

// Exists reports whether a live record is stored under code. Used as the code
// generator's collision check.
func (r *RedisLinkRepository) Exists(ctx context.Context, code string) (bool, error) {
	n, err := r.client.Exists(ctx, linkKeyPrefix+code).Result()
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return n > 0, nil
}

// unmarshalRecord decodes a stored JSON document back into a LinkRecord.
func unmarshalRecord(data []byte) (*linksDomain.LinkRecord, error) {
	var record linksDomain.LinkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedPayload, err.Error())
	}
	return &record, nil
}
