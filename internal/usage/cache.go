package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "genusage:"

// Cache is the advisory Redis mirror of quota status. It exists only for
// display continuity when the event store is unreachable; it is never
// consulted for enforcement.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewCache creates a new advisory cache with the given entry TTL.
func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(userID uuid.UUID) string {
	return cacheKeyPrefix + userID.String()
}

// Put stores the freshly computed status for a user.
func (c *Cache) Put(ctx context.Context, userID uuid.UUID, st Status) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling usage status: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching usage status: %w", err)
	}
	return nil
}

// Get returns the last cached status, or ok=false on a miss.
func (c *Cache) Get(ctx context.Context, userID uuid.UUID) (Status, bool, error) {
	data, err := c.rdb.Get(ctx, cacheKey(userID)).Bytes()
	if err == redis.Nil {
		return Status{}, false, nil
	}
	if err != nil {
		return Status{}, false, fmt.Errorf("reading cached usage status: %w", err)
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return Status{}, false, fmt.Errorf("unmarshaling cached usage status: %w", err)
	}
	return st, true, nil
}

// RecordEvent advances the cached status by one consumed attempt. Used to
// mirror a durable write without re-reading the store.
func (c *Cache) RecordEvent(ctx context.Context, userID uuid.UUID, limit int, window time.Duration, at time.Time) error {
	st, ok, err := c.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		st = Status{Remaining: limit}
	}

	if st.Remaining > 0 {
		st.Remaining--
	}
	if st.Remaining == 0 {
		st.HasReachedLimit = true
		if st.ResetTime == nil {
			reset := at.Add(window)
			st.ResetTime = &reset
		}
	}

	return c.Put(ctx, userID, st)
}
