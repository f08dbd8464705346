package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tradelog/internal/kv"
	"tradelog/internal/logger"
)

// Collection keys.
const (
	KeyTrades         = "trades"
	KeyRules          = "rules"
	KeyDailyStats     = "daily_stats"
	KeyActivityLog    = "activity_log"
	KeyProgress       = "progress"
	KeyUnlocked       = "achievements_unlocked"
	KeySchema         = "schema"
	KeySocial         = "social_connections"
	KeyTradeSeq       = "trade_seq"
	KeyActivityPrefix = "activity_log_archive:"
)

// ErrCorrupt marks a stored document that failed to decode. Loads never return
// it; they log and fall back to the empty default.
var ErrCorrupt = errors.New("repository: corrupt document")

// ErrNoChange lets an update function skip the write.
var ErrNoChange = errors.New("repository: no change")

const defaultRetries = 5

// Store exposes the persisted collections as typed documents on top of a kv.Store.
type Store struct {
	KV      kv.Store
	Logger  *zap.Logger
	Retries int
}

func New(store kv.Store, log *zap.Logger, retries int) *Store {
	if retries <= 0 {
		retries = defaultRetries
	}
	return &Store{KV: store, Logger: logger.OrNop(log), Retries: retries}
}

func (s *Store) log() *zap.Logger {
	return logger.OrNop(s.Logger)
}

func (s *Store) retries() int {
	if s.Retries <= 0 {
		return defaultRetries
	}
	return s.Retries
}

func load[T any](ctx context.Context, s *Store, key string, def func() T) (T, int64, error) {
	d, err := read(ctx, s, key, def)
	return d.value, d.version, err
}

type document[T any] struct {
	value   T
	version int64
	// corrupt holds the stored bytes when they failed to decode.
	corrupt []byte
}

func read[T any](ctx context.Context, s *Store, key string, def func() T) (document[T], error) {
	raw, version, found, err := s.KV.Get(ctx, key)
	if err != nil {
		return document[T]{value: def()}, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return document[T]{value: def(), version: version}, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log().Warn("stored collection corrupt, using empty default",
			zap.String("collection", key),
			zap.Int64("version", version),
			zap.Error(fmt.Errorf("%w: %v", ErrCorrupt, err)),
		)
		return document[T]{value: def(), version: version, corrupt: raw}, nil
	}
	return document[T]{value: out, version: version}, nil
}

// CorruptKey names the backup written before a corrupt document is replaced.
func CorruptKey(key string, version int64) string {
	return fmt.Sprintf("%s.corrupt.%d", key, version)
}

// backup keeps the undecodable bytes of key under CorruptKey. A backup that
// already exists for the same version is left as is.
func (s *Store) backup(ctx context.Context, key string, version int64, raw []byte) error {
	bkey := CorruptKey(key, version)
	_, err := s.KV.Put(ctx, bkey, raw, 0)
	if errors.Is(err, kv.ErrVersionConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}
	s.log().Warn("corrupt collection backed up before overwrite",
		zap.String("collection", key),
		zap.String("backup", bkey),
		zap.Int("bytes", len(raw)),
	)
	return nil
}

func put[T any](ctx context.Context, s *Store, key string, value T, version int64) (int64, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}
	return s.KV.Put(ctx, key, raw, version)
}

// update runs a read-modify-write against the current persisted document and
// retries on version conflicts. fn may run more than once. A document that
// failed to decode is copied to CorruptKey before it is replaced.
func update[T any](ctx context.Context, s *Store, key string, def func() T, fn func(T) (T, error)) (T, error) {
	for attempt := 0; ; attempt++ {
		d, err := read(ctx, s, key, def)
		current := d.value
		if err != nil {
			return current, err
		}
		next, err := fn(current)
		if errors.Is(err, ErrNoChange) {
			return current, nil
		}
		if err != nil {
			return current, err
		}
		if d.corrupt != nil {
			if err := s.backup(ctx, key, d.version, d.corrupt); err != nil {
				return current, err
			}
		}
		_, err = put(ctx, s, key, next, d.version)
		if errors.Is(err, kv.ErrVersionConflict) && attempt < s.retries() {
			s.log().Debug("version conflict, retrying", zap.String("collection", key), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return current, fmt.Errorf("save %s: %w", key, err)
		}
		return next, nil
	}
}
