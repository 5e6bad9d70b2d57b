package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore maps an owner's Idempotency-Key to the booking it created.
// Key format: idem:booking:<owner_id>:<key>, so the same client-chosen key
// from two different users never collides.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Lookup returns the booking id previously recorded for the owner's key, or ""
// when the key has not been seen.
func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID, key string) (string, error) {
	id, err := s.client.Get(ctx, s.key(ownerID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, nil
}

// Remember records that the owner's key created bookingID (expires after
// idempotencyTTL).
func (s *IdempotencyStore) Remember(ctx context.Context, ownerID, key, bookingID string) error {
	return s.client.Set(ctx, s.key(ownerID, key), bookingID, idempotencyTTL).Err()
}

func (s *IdempotencyStore) key(ownerID, key string) string {
	return "idem:booking:" + ownerID + ":" + key
}
