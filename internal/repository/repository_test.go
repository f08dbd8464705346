package repository

import (
	"context"
	"errors"
	"testing"

	"tradelog/internal/kv"
	"tradelog/internal/models"
)

// racingStore injects a concurrent write before the first Put.
type racingStore struct {
	*kv.MemoryStore
	raced bool
	race  func()
}

func (r *racingStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	if !r.raced && r.race != nil {
		r.raced = true
		r.race()
	}
	return r.MemoryStore.Put(ctx, key, value, expectedVersion)
}

func TestLoad_CorruptFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	if _, err := mem.Put(ctx, KeyTrades, []byte(`{not json`), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := New(mem, nil, 0)
	trades, err := s.Trades(ctx)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("trades=%d want 0", len(trades))
	}

	// A write after corruption replaces the document.
	_, err = s.UpdateTrades(ctx, func(items []models.TradeEntry) ([]models.TradeEntry, error) {
		return append(items, models.TradeEntry{ID: 1}), nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	trades, _ = s.Trades(ctx)
	if len(trades) != 1 || trades[0].ID != 1 {
		t.Fatalf("trades=%+v", trades)
	}

	// The replaced bytes survive under the backup key.
	raw, _, found, err := mem.Get(ctx, CorruptKey(KeyTrades, 1))
	if err != nil || !found {
		t.Fatalf("backup found=%v err=%v", found, err)
	}
	if string(raw) != `{not json` {
		t.Fatalf("backup=%q want original bytes", raw)
	}
}

func TestUpdate_OpaqueTradeIDKeptInBackup(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	seed := `[{"id":"legacy-1","symbol":"MSFT"},{"id":2,"symbol":"AAPL"}]`
	if _, err := mem.Put(ctx, KeyTrades, []byte(seed), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := New(mem, nil, 0)

	// Without a change nothing is written and nothing is backed up.
	if _, err := s.UpdateTrades(ctx, func([]models.TradeEntry) ([]models.TradeEntry, error) {
		return nil, ErrNoChange
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, _, found, _ := mem.Get(ctx, CorruptKey(KeyTrades, 1)); found {
		t.Fatalf("backup written without a write")
	}

	if _, err := s.UpdateTrades(ctx, func(items []models.TradeEntry) ([]models.TradeEntry, error) {
		return append(items, models.TradeEntry{ID: 3}), nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	raw, _, found, _ := mem.Get(ctx, CorruptKey(KeyTrades, 1))
	if !found || string(raw) != seed {
		t.Fatalf("backup=%q found=%v want seeded collection", raw, found)
	}
}

func TestNextTradeID(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemoryStore(), nil, 0)
	first, err := s.NextTradeID(ctx, 0)
	if err != nil || first != 1 {
		t.Fatalf("first=%d err=%v want 1", first, err)
	}
	// An existing collection lifts the sequence past its ids.
	next, _ := s.NextTradeID(ctx, 7)
	if next != 8 {
		t.Fatalf("next=%d want 8", next)
	}
	// A lower floor never moves it back.
	next, _ = s.NextTradeID(ctx, 2)
	if next != 9 {
		t.Fatalf("next=%d want 9", next)
	}
}

func TestUpdate_RetriesOnConflictAgainstCurrentValue(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	rs := &racingStore{MemoryStore: mem}
	s := New(rs, nil, 3)

	rs.race = func() {
		other := New(mem, nil, 0)
		_, _ = other.UpdateRules(ctx, func(items []models.Rule) ([]models.Rule, error) {
			return append(items, models.Rule{ID: "other"}), nil
		})
	}
	calls := 0
	rules, err := s.UpdateRules(ctx, func(items []models.Rule) ([]models.Rule, error) {
		calls++
		return append(items, models.Rule{ID: "mine"}), nil
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
	if len(rules) != 2 || rules[0].ID != "other" || rules[1].ID != "mine" {
		t.Fatalf("rules=%+v", rules)
	}
}

func TestUpdate_NoChangeSkipsWrite(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	s := New(mem, nil, 0)
	_, err := s.UpdateProgress(ctx, func(models.Progress) (models.Progress, error) {
		return models.Progress{}, ErrNoChange
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, _, found, _ := mem.Get(ctx, KeyProgress); found {
		t.Fatalf("no-change update wrote a document")
	}
}

func TestUpdate_PropagatesFnError(t *testing.T) {
	s := New(kv.NewMemoryStore(), nil, 0)
	boom := errors.New("boom")
	_, err := s.UpdateUnlocked(context.Background(), func([]string) ([]string, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
}

func TestLegacyFlag(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	s := New(mem, nil, 0)
	if _, err := mem.Put(ctx, "images_migrated_v1", []byte(`"true"`), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if ok, _ := s.LegacyFlag(ctx, "images_migrated_v1"); !ok {
		t.Fatalf("string flag not recognised")
	}
	if ok, _ := s.LegacyFlag(ctx, "pnl_fixed_v1"); ok {
		t.Fatalf("absent flag reported set")
	}
	if err := s.SetLegacyFlag(ctx, "pnl_fixed_v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, _ := s.LegacyFlag(ctx, "pnl_fixed_v1"); !ok {
		t.Fatalf("flag not set")
	}
}
