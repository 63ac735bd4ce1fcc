package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/patasoft/petshop-platform/pkg/logging"
)

// CalendarCache keeps the per-month day-count aggregate in Redis. The
// aggregate is rebuilt wholesale on every miss and dropped on every
// appointment write for the affected tenant.
type CalendarCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewCalendarCache(rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *CalendarCache {
	if logger == nil {
		logger = logging.Default()
	}
	return &CalendarCache{rdb: rdb, ttl: ttl, logger: logger}
}

func calendarKey(empresaID int64, ano, mes int) string {
	return fmt.Sprintf("calendario:%d:%04d-%02d", empresaID, ano, mes)
}

// Get returns the cached aggregate, or (nil, false) on miss or error.
// Cache failures degrade to a database read, never to a request failure.
func (c *CalendarCache) Get(ctx context.Context, empresaID int64, ano, mes int) ([]DayCount, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, calendarKey(empresaID, ano, mes)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("calendar cache read failed", "error", err)
		}
		return nil, false
	}
	var counts []DayCount
	if err := json.Unmarshal(raw, &counts); err != nil {
		c.logger.Warn("calendar cache payload corrupt", "error", err)
		return nil, false
	}
	return counts, true
}

// Set stores the aggregate with the configured TTL.
func (c *CalendarCache) Set(ctx context.Context, empresaID int64, ano, mes int, counts []DayCount) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, calendarKey(empresaID, ano, mes), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("calendar cache write failed", "error", err)
	}
}

// Invalidate drops the cached month containing the given timestamp.
func (c *CalendarCache) Invalidate(ctx context.Context, empresaID int64, when time.Time) {
	if c == nil || c.rdb == nil {
		return
	}
	key := calendarKey(empresaID, when.Year(), int(when.Month()))
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("calendar cache invalidation failed", "key", key, "error", err)
	}
}
