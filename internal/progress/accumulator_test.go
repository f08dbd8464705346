package progress

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradelog/internal/kv"
	"tradelog/internal/models"
	"tradelog/internal/repository"
)

type settings struct {
	start, target, per decimal.Decimal
}

func (s settings) StartingPortfolioValue() decimal.Decimal { return s.start }
func (s settings) TargetCompletions() decimal.Decimal { return s.target }
func (s settings) PercentPerCompletion() decimal.Decimal { return s.per }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newAccumulator(target string) (*Accumulator, *repository.Store) {
	store := repository.New(kv.NewMemoryStore(), nil, 0)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	return &Accumulator{
		Store:    store,
		Settings: settings{start: dec("10000"), target: dec(target), per: dec("1")},
		Now:      func() time.Time { return now },
	}, store
}

func winner(date, pnl string) models.TradeEntry {
	return models.TradeEntry{Date: date, PnL: dec(pnl), RuleCompliant: true}
}

func TestRecordTrade_SaturatesAtTarget(t *testing.T) {
	ctx := context.Background()
	acc, store := newAccumulator("2")

	u, err := acc.RecordTrade(ctx, winner("2026-03-02", "150"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !u.Applied.Equal(dec("1.5")) {
		t.Fatalf("applied=%s want 1.5", u.Applied)
	}
	u, _ = acc.RecordTrade(ctx, winner("2026-03-02", "150"))
	if !u.Applied.Equal(dec("0.5")) || !u.Saturated {
		t.Fatalf("update=%+v want clipped 0.5", u)
	}
	u, _ = acc.RecordTrade(ctx, winner("2026-03-03", "500"))
	if !u.Applied.IsZero() {
		t.Fatalf("applied=%s after target reached", u.Applied)
	}

	p, _ := store.Progress(ctx)
	if !p.Completions.Equal(dec("2")) {
		t.Fatalf("completions=%s want 2", p.Completions)
	}
	stats, _ := store.DailyStats(ctx)
	if !stats["2026-03-02"].Completions.Equal(dec("2")) {
		t.Fatalf("daily=%+v", stats)
	}
	if _, ok := stats["2026-03-03"]; ok {
		t.Fatalf("saturated trade created a daily stat")
	}
}

func TestRecordTradeProgress_NeverDecrements(t *testing.T) {
	ctx := context.Background()
	acc, store := newAccumulator("100")
	if _, err := acc.RecordTradeProgress(ctx, "2026-03-02", dec("2.5"), true); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := acc.RecordTradeProgress(ctx, "2026-03-02", dec("-4"), true); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := acc.RecordTradeProgress(ctx, "2026-03-02", dec("4"), false); err != nil {
		t.Fatalf("err=%v", err)
	}
	p, _ := store.Progress(ctx)
	if !p.Completions.Equal(dec("2.5")) {
		t.Fatalf("completions=%s want 2.5", p.Completions)
	}
}

func TestRecordTrade_OrderWithinDateIrrelevant(t *testing.T) {
	ctx := context.Background()
	trades := []models.TradeEntry{
		winner("2026-03-02", "123.45"),
		winner("2026-03-02", "80"),
		{Date: "2026-03-02", PnL: dec("-10")},
		winner("2026-03-02", "333.33"),
	}
	run := func(order []int) (models.Progress, models.DailyStats) {
		acc, store := newAccumulator("5")
		for _, i := range order {
			if _, err := acc.RecordTrade(ctx, trades[i]); err != nil {
				t.Fatalf("err=%v", err)
			}
		}
		p, _ := store.Progress(ctx)
		s, _ := store.DailyStats(ctx)
		return p, s
	}
	p1, s1 := run([]int{0, 1, 2, 3})
	p2, s2 := run([]int{3, 2, 1, 0})
	if !p1.Completions.Equal(p2.Completions) {
		t.Fatalf("completions %s != %s", p1.Completions, p2.Completions)
	}
	d1, d2 := s1["2026-03-02"], s2["2026-03-02"]
	if !d1.Completions.Equal(d2.Completions) || d1.Violations != d2.Violations || d1.Violations != 1 {
		t.Fatalf("daily %+v != %+v", d1, d2)
	}
}

func TestRecordTrade_ViolationAndRingBuffer(t *testing.T) {
	ctx := context.Background()
	acc, store := newAccumulator("100")
	acc.Capacity = 3
	for i := int64(1); i <= 5; i++ {
		u, err := acc.RecordTrade(ctx, models.TradeEntry{ID: i, Date: "2026-03-02", PnL: dec("50")})
		if err != nil {
			t.Fatalf("err=%v", err)
		}
		if !u.Violation {
			t.Fatalf("non-compliant trade not counted as violation")
		}
	}
	stats, _ := store.DailyStats(ctx)
	if stats["2026-03-02"].Violations != 5 {
		t.Fatalf("violations=%d want 5", stats["2026-03-02"].Violations)
	}
	log, _ := store.ActivityLog(ctx)
	if len(log) != 3 || log[0].TradeID != 3 || log[2].TradeID != 5 {
		t.Fatalf("log=%+v", log)
	}
	archived, _ := store.ActivityArchive(ctx, "2026-03")
	if len(archived) != 2 || archived[0].TradeID != 1 {
		t.Fatalf("archive=%+v", archived)
	}
	p, _ := store.Progress(ctx)
	if !p.Completions.IsZero() {
		t.Fatalf("non-compliant trade advanced progress")
	}
}

func TestArchiveBefore(t *testing.T) {
	ctx := context.Background()
	acc, store := newAccumulator("100")
	times := []time.Time{
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, ts := range times {
		acc.Now = func() time.Time { return ts }
		if _, err := acc.RecordTrade(ctx, models.TradeEntry{ID: int64(i + 1), Date: ts.Format("2006-01-02")}); err != nil {
			t.Fatalf("err=%v", err)
		}
	}
	n, err := acc.ArchiveBefore(ctx, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))
	if err != nil || n != 2 {
		t.Fatalf("moved=%d err=%v", n, err)
	}
	log, _ := store.ActivityLog(ctx)
	if len(log) != 1 || log[0].TradeID != 3 {
		t.Fatalf("log=%+v", log)
	}
	jan, _ := store.ActivityArchive(ctx, "2026-01")
	feb, _ := store.ActivityArchive(ctx, "2026-02")
	if len(jan) != 1 || len(feb) != 1 {
		t.Fatalf("jan=%d feb=%d", len(jan), len(feb))
	}
	if n, _ := acc.ArchiveBefore(ctx, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)); n != 0 {
		t.Fatalf("second archive moved %d", n)
	}
}
