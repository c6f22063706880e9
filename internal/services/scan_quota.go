package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saeid-a/NutriScanBack/internal/logger"
)

// ScanQuota counts free food scans per user per UTC day in redis.
type ScanQuota struct {
	rdb   *redis.Client
	limit int
	log   *logger.Logger
	now   func() time.Time
}

// ScanTicket is one counted scan. It remembers the day it was counted on so
// a release after midnight gives the scan back to the right day.
type ScanTicket struct {
	Key       string
	Used      int
	Remaining int
}

func NewScanQuota(rdb *redis.Client, limit int, log *logger.Logger) *ScanQuota {
	return &ScanQuota{rdb: rdb, limit: limit, log: log.With("component", "ScanQuota"), now: time.Now}
}

func (q *ScanQuota) key(userID int64) string {
	return fmt.Sprintf("scan_quota:%d:%s", userID, q.now().UTC().Format("2006-01-02"))
}

// Consume records one scan and fails with ErrQuotaExceeded once the daily
// limit has been used. The rejected attempt is not counted.
func (q *ScanQuota) Consume(ctx context.Context, userID int64) (ScanTicket, error) {
	key := q.key(userID)

	pipe := q.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 25*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return ScanTicket{}, fmt.Errorf("consume scan quota: %w", err)
	}

	used := int(incr.Val())
	if used > q.limit {
		if err := q.rdb.Decr(ctx, key).Err(); err != nil {
			q.log.Warn("undo rejected scan count", "user_id", userID, "key", key, "error", err)
		}
		return ScanTicket{Key: key, Used: q.limit}, ErrQuotaExceeded
	}
	return ScanTicket{Key: key, Used: used, Remaining: q.limit - used}, nil
}

// Release gives back a scan that failed after it was counted.
func (q *ScanQuota) Release(ctx context.Context, ticket ScanTicket) error {
	if ticket.Key == "" {
		return nil
	}
	return q.rdb.Decr(ctx, ticket.Key).Err()
}

func (q *ScanQuota) Remaining(ctx context.Context, userID int64) (int, error) {
	used, err := q.rdb.Get(ctx, q.key(userID)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("read scan quota: %w", err)
	}
	if used >= q.limit {
		return 0, nil
	}
	return q.limit - used, nil
}
