package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/installment-ledger/internal/domain"
)

// LoanCache keeps read-side loan summaries in redis. The database stays the
// source of truth; entries are dropped after every ledger mutation.
//
// One hash per loan, one field per actor that read it, so a summary is only
// ever served to an actor who was already allowed to see it and a single DEL
// invalidates all of them.
type LoanCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLoanCache(rdb *redis.Client, ttl time.Duration) *LoanCache {
	return &LoanCache{rdb: rdb, ttl: ttl}
}

func summaryKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:summary:%s", loanID)
}

// GetSummary returns the cached summary, or nil on a miss.
func (c *LoanCache) GetSummary(ctx context.Context, loanID uuid.UUID, actorID string) (*domain.LoanSummary, error) {
	raw, err := c.rdb.HGet(ctx, summaryKey(loanID), actorID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s domain.LoanSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		// a corrupt entry is a miss
		_ = c.rdb.HDel(ctx, summaryKey(loanID), actorID).Err()
		return nil, nil
	}
	return &s, nil
}

func (c *LoanCache) SetSummary(ctx context.Context, actorID string, s *domain.LoanSummary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	key := summaryKey(s.LoanID)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, actorID, raw)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}

func (c *LoanCache) Invalidate(ctx context.Context, loanID uuid.UUID) error {
	return c.rdb.Del(ctx, summaryKey(loanID)).Err()
}
