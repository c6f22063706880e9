package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionTTL = 24 * time.Hour

var ErrNoSession = errors.New("no onboarding session")

type Store interface {
	Load(ctx context.Context, userID int64) (*State, error)
	Save(ctx context.Context, userID int64, state *State) error
	Delete(ctx context.Context, userID int64) error
}

// RedisStore keeps in-progress onboarding states under onboarding:<user_id>.
// Every save refreshes the expiry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: sessionTTL}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("onboarding:%d", userID)
}

func (s *RedisStore) Load(ctx context.Context, userID int64) (*State, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load onboarding session: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode onboarding session: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, userID int64, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode onboarding session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save onboarding session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}
