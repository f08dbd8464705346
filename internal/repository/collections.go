package repository

import (
	"context"
	"encoding/json"
	"strings"

	"tradelog/internal/models"
)

func emptyTrades() []models.TradeEntry { return []models.TradeEntry{} }
func emptyRules() []models.Rule { return []models.Rule{} }
func emptyDailyStats() models.DailyStats { return models.DailyStats{} }
func emptyActivity() []models.ActivityLogEntry { return []models.ActivityLogEntry{} }
func emptyProgress() models.Progress { return models.Progress{} }
func emptyUnlocked() []string { return []string{} }
func emptyRaw() []json.RawMessage { return []json.RawMessage{} }
func emptySchema() Schema { return Schema{Applied: map[string]bool{}} }
func zeroInt() int { return 0 }
func zeroInt64() int64 { return 0 }

// Trades returns the trade collection, newest first.
func (s *Store) Trades(ctx context.Context) ([]models.TradeEntry, error) {
	items, _, err := load(ctx, s, KeyTrades, emptyTrades)
	return items, err
}

func (s *Store) UpdateTrades(ctx context.Context, fn func([]models.TradeEntry) ([]models.TradeEntry, error)) ([]models.TradeEntry, error) {
	return update(ctx, s, KeyTrades, emptyTrades, fn)
}

// NextTradeID issues the next trade id from a persisted sequence, so ids of
// deleted trades are never handed out again. floor lifts the sequence past ids
// written before it existed.
func (s *Store) NextTradeID(ctx context.Context, floor int64) (int64, error) {
	return update(ctx, s, KeyTradeSeq, zeroInt64, func(cur int64) (int64, error) {
		if floor > cur {
			cur = floor
		}
		return cur + 1, nil
	})
}

// RawTrades returns the trade documents undecoded, with the collection version.
// Migrations use it to reach fields the current model no longer has.
func (s *Store) RawTrades(ctx context.Context) ([]json.RawMessage, int64, error) {
	return load(ctx, s, KeyTrades, emptyRaw)
}

// PutRawTrades writes the trade collection if it is still at version.
func (s *Store) PutRawTrades(ctx context.Context, entries []json.RawMessage, version int64) error {
	_, err := put(ctx, s, KeyTrades, entries, version)
	return err
}

func (s *Store) Rules(ctx context.Context) ([]models.Rule, error) {
	items, _, err := load(ctx, s, KeyRules, emptyRules)
	return items, err
}

func (s *Store) UpdateRules(ctx context.Context, fn func([]models.Rule) ([]models.Rule, error)) ([]models.Rule, error) {
	return update(ctx, s, KeyRules, emptyRules, fn)
}

func (s *Store) DailyStats(ctx context.Context) (models.DailyStats, error) {
	items, _, err := load(ctx, s, KeyDailyStats, emptyDailyStats)
	if items == nil {
		items = emptyDailyStats()
	}
	return items, err
}

func (s *Store) UpdateDailyStats(ctx context.Context, fn func(models.DailyStats) (models.DailyStats, error)) (models.DailyStats, error) {
	return update(ctx, s, KeyDailyStats, emptyDailyStats, func(cur models.DailyStats) (models.DailyStats, error) {
		if cur == nil {
			cur = emptyDailyStats()
		}
		return fn(cur)
	})
}

func (s *Store) ActivityLog(ctx context.Context) ([]models.ActivityLogEntry, error) {
	items, _, err := load(ctx, s, KeyActivityLog, emptyActivity)
	return items, err
}

func (s *Store) UpdateActivityLog(ctx context.Context, fn func([]models.ActivityLogEntry) ([]models.ActivityLogEntry, error)) ([]models.ActivityLogEntry, error) {
	return update(ctx, s, KeyActivityLog, emptyActivity, fn)
}

// ActivityArchive returns the archived activity entries of one month (YYYY-MM).
func (s *Store) ActivityArchive(ctx context.Context, month string) ([]models.ActivityLogEntry, error) {
	items, _, err := load(ctx, s, KeyActivityPrefix+month, emptyActivity)
	return items, err
}

func (s *Store) UpdateActivityArchive(ctx context.Context, month string, fn func([]models.ActivityLogEntry) ([]models.ActivityLogEntry, error)) ([]models.ActivityLogEntry, error) {
	return update(ctx, s, KeyActivityPrefix+month, emptyActivity, fn)
}

func (s *Store) Progress(ctx context.Context) (models.Progress, error) {
	item, _, err := load(ctx, s, KeyProgress, emptyProgress)
	return item, err
}

func (s *Store) UpdateProgress(ctx context.Context, fn func(models.Progress) (models.Progress, error)) (models.Progress, error) {
	return update(ctx, s, KeyProgress, emptyProgress, fn)
}

// Unlocked returns the ids of granted achievements.
func (s *Store) Unlocked(ctx context.Context) ([]string, error) {
	items, _, err := load(ctx, s, KeyUnlocked, emptyUnlocked)
	return items, err
}

func (s *Store) UpdateUnlocked(ctx context.Context, fn func([]string) ([]string, error)) ([]string, error) {
	return update(ctx, s, KeyUnlocked, emptyUnlocked, fn)
}

// SocialConnections is written by an external collaborator; absent means 0.
func (s *Store) SocialConnections(ctx context.Context) (int, error) {
	n, _, err := load(ctx, s, KeySocial, zeroInt)
	return n, err
}

func (s *Store) SetSocialConnections(ctx context.Context, n int) error {
	_, err := update(ctx, s, KeySocial, zeroInt, func(int) (int, error) { return n, nil })
	return err
}

// LegacyFlag reads a boolean flag written by the flag-based migration scheme.
// Both true and "true" count as set.
func (s *Store) LegacyFlag(ctx context.Context, key string) (bool, error) {
	raw, _, found, err := s.KV.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	v := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return strings.EqualFold(v, "true"), nil
}

func (s *Store) SetLegacyFlag(ctx context.Context, key string) error {
	_, err := update(ctx, s, key, func() bool { return false }, func(bool) (bool, error) { return true, nil })
	return err
}
