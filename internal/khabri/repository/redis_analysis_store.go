package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/common"
	"market-khabri/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	redisFieldData       = "data"
	redisFieldModifiedAt = "modified_at"
)

// NewRedisAnalysisStore creates a store that keeps each key in a hash and
// indexes all keys in a sorted set scored by modification time.
func NewRedisAnalysisStore(client redis.Cmdable, log *logger.Logger) AnalysisStore {
	return &redisAnalysisStore{client: client, logger: log, now: time.Now}
}

type redisAnalysisStore struct {
	client redis.Cmdable
	logger *logger.Logger
	now    func() time.Time
}

func (s *redisAnalysisStore) Write(ctx context.Context, key string, data []byte) error {
	now := s.now().UTC()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, common.RedisKeyNamespace+key, redisFieldData, data, redisFieldModifiedAt, now.UnixNano())
		pipe.ZAdd(ctx, common.RedisIndexKey, redis.Z{Score: float64(now.UnixNano()), Member: key})
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to write to redis", logger.ErrorField(err), logger.StringField("key", key))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *redisAnalysisStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.HGet(ctx, common.RedisKeyNamespace+key, redisFieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("key %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *redisAnalysisStore) List(ctx context.Context, prefix string) ([]string, error) {
	members, err := s.client.ZRange(ctx, common.RedisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		if strings.HasPrefix(m, prefix) {
			keys = append(keys, m)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *redisAnalysisStore) ModTime(ctx context.Context, key string) (time.Time, error) {
	nanos, err := s.client.HGet(ctx, common.RedisKeyNamespace+key, redisFieldModifiedAt).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, fmt.Errorf("key %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read modification time of %s: %w", key, err)
	}
	return time.Unix(0, nanos).UTC(), nil
}
