package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradelog/internal/models"
)

func trade(id int64, date string, compliant bool, pnl string) models.TradeEntry {
	return models.TradeEntry{ID: id, Date: date, RuleCompliant: compliant, PnL: decimal.RequireFromString(pnl)}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	trades := []models.TradeEntry{
		trade(1, "2026-01-05", true, "100"),
		trade(2, "2026-03-04", false, "-50"),
		trade(3, "2026-03-09", true, "200"),
		trade(4, "2026-03-10", true, "250"),
		trade(5, "2026-03-10", true, "0"),
	}
	snap := Build(trades, 3, decimal.NewFromInt(10000), now)

	all := snap.For(AllTime)
	if all.TotalTrades != 5 || all.Streak != 3 || all.Social != 3 || all.Time != 4 {
		t.Fatalf("all=%+v", all)
	}
	if all.ComplianceRate != 80 {
		t.Fatalf("complianceRate=%v want 80", all.ComplianceRate)
	}
	if all.Growth != 5 {
		t.Fatalf("growth=%v want 5", all.Growth)
	}

	day := snap.For(Daily)
	if day.TotalTrades != 2 || day.Time != 1 || day.Streak != 2 {
		t.Fatalf("daily=%+v", day)
	}
	week := snap.For(Weekly)
	if week.TotalTrades != 4 || week.Streak != 3 || week.ComplianceRate != 75 {
		t.Fatalf("weekly=%+v", week)
	}
	if snap.For(Monthly).TotalTrades != 4 {
		t.Fatalf("monthly=%+v", snap.For(Monthly))
	}
	if snap.For("") != all {
		t.Fatalf("empty timeframe is not all time")
	}
}

func TestBuild_Empty(t *testing.T) {
	snap := Build(nil, 0, decimal.NewFromInt(10000), time.Now())
	for _, tf := range Timeframes {
		if s := snap.For(tf); s != (UserStats{}) {
			t.Fatalf("%s=%+v want zero", tf, s)
		}
	}
}

func TestValue(t *testing.T) {
	s := UserStats{TotalTrades: 7, ComplianceRate: 91.5, Streak: 2, Growth: 12.25, Social: 4, Time: 3}
	cases := map[string]float64{
		KindTrades: 7, KindCompliance: 91.5, KindStreak: 2, KindGrowth: 12.25, KindSocial: 4, KindTime: 3,
	}
	for kind, want := range cases {
		got, ok := s.Value(kind)
		if !ok || got != want {
			t.Fatalf("%s=%v,%v want %v", kind, got, ok, want)
		}
	}
	if _, ok := s.Value("karma"); ok {
		t.Fatalf("unknown kind accepted")
	}
}

func TestBetween(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	trades := []models.TradeEntry{
		trade(1, "2026-09-28", true, "100"),
		trade(2, "2026-09-30", true, "100"),
		trade(3, "2026-10-01", true, "300"),
		trade(4, "2026-10-05", false, "-100"),
		trade(5, "2026-10-06", true, "50"),
	}
	snap := Build(trades, 0, decimal.NewFromInt(1000), now)
	if _, ok := snap.Timeframes[Window]; ok {
		t.Fatalf("window stats present without Between")
	}

	oct := snap.Between(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), now)
	w := oct.For(Window)
	if w.TotalTrades != 3 || w.Streak != 1 || w.Growth != 25 || w.Time != 3 {
		t.Fatalf("window=%+v", w)
	}
	if oct.For(AllTime) != snap.For(AllTime) {
		t.Fatalf("Between changed all-time stats")
	}
	if _, ok := snap.Timeframes[Window]; ok {
		t.Fatalf("Between mutated the original snapshot")
	}
}
