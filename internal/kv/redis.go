package kv

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	redisValueField   = "value"
	redisVersionField = "version"
)

// RedisStore keeps each document in a hash with value and version fields and
// guards writes with WATCH/MULTI.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(opt *redis.Options) *RedisStore {
	return &RedisStore{Client: redis.NewClient(opt)}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, int64, bool, error) {
	vals, err := s.Client.HMGet(ctx, key, redisValueField, redisVersionField).Result()
	if err != nil {
		return nil, 0, false, err
	}
	if len(vals) != 2 || vals[0] == nil {
		return nil, 0, false, nil
	}
	raw, _ := vals[0].(string)
	version, err := parseVersion(vals[1])
	if err != nil {
		return nil, 0, false, err
	}
	return []byte(raw), version, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	var next int64
	err := s.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, redisVersionField).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		var version int64
		if current != "" {
			version, err = strconv.ParseInt(current, 10, 64)
			if err != nil {
				return err
			}
		}
		if version != expectedVersion {
			return ErrVersionConflict
		}
		next = version + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, redisValueField, string(value), redisVersionField, next)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}

func parseVersion(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case string:
		if t == "" {
			return 0, nil
		}
		return strconv.ParseInt(t, 10, 64)
	case int64:
		return t, nil
	default:
		return 0, errors.New("kv: unexpected redis version type")
	}
}
