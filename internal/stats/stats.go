package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tradelog/internal/models"
)

type Timeframe string

const (
	Daily   Timeframe = "daily"
	Weekly  Timeframe = "weekly"
	Monthly Timeframe = "monthly"
	AllTime Timeframe = "all_time"
	// Window is only present in snapshots narrowed with Between.
	Window Timeframe = "window"
)

// Timeframes lists every window a snapshot carries.
var Timeframes = []Timeframe{Daily, Weekly, Monthly, AllTime}

func (tf Timeframe) Valid() bool {
	switch tf {
	case Daily, Weekly, Monthly, AllTime:
		return true
	}
	return false
}

// days is the rolling window length ending today; 0 means unbounded, future
// dates included.
func (tf Timeframe) days() int {
	switch tf {
	case Daily:
		return 1
	case Weekly:
		return 7
	case Monthly:
		return 30
	}
	return 0
}

// Requirement types understood by Value.
const (
	KindTrades     = "trades"
	KindStreak     = "streak"
	KindCompliance = "compliance"
	KindGrowth     = "growth"
	KindSocial     = "social"
	KindTime       = "time"
)

// UserStats aggregates the trades of one window. ComplianceRate and Growth are
// percentages; Time counts distinct trading days.
type UserStats struct {
	TotalTrades    int     `json:"totalTrades"`
	ComplianceRate float64 `json:"complianceRate"`
	Streak         int     `json:"streak"`
	Growth         float64 `json:"growth"`
	Social         int     `json:"social"`
	Time           int     `json:"time"`
}

// Value returns the statistic a requirement of the given type compares against.
func (s UserStats) Value(kind string) (float64, bool) {
	switch kind {
	case KindTrades:
		return float64(s.TotalTrades), true
	case KindStreak:
		return float64(s.Streak), true
	case KindCompliance:
		return s.ComplianceRate, true
	case KindGrowth:
		return s.Growth, true
	case KindSocial:
		return float64(s.Social), true
	case KindTime:
		return float64(s.Time), true
	}
	return 0, false
}

type Snapshot struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	Timeframes  map[Timeframe]UserStats `json:"timeframes"`

	// newest first
	trades        []models.TradeEntry
	social        int
	startingValue decimal.Decimal
}

// For returns the stats of one window; an empty timeframe means all time.
func (s Snapshot) For(tf Timeframe) UserStats {
	if tf == "" {
		tf = AllTime
	}
	return s.Timeframes[tf]
}

// Build derives a snapshot from the trade collection. It is pure: the same
// trades, social count and clock give the same result.
func Build(trades []models.TradeEntry, social int, startingValue decimal.Decimal, now time.Time) Snapshot {
	ordered := make([]models.TradeEntry, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date > ordered[j].Date
		}
		return ordered[i].ID > ordered[j].ID
	})

	today := now.UTC().Format("2006-01-02")
	snap := Snapshot{
		GeneratedAt:   now,
		Timeframes:    make(map[Timeframe]UserStats, len(Timeframes)),
		trades:        ordered,
		social:        social,
		startingValue: startingValue,
	}
	for _, tf := range Timeframes {
		from := ""
		if d := tf.days(); d > 0 {
			from = now.UTC().AddDate(0, 0, -(d - 1)).Format("2006-01-02")
		}
		var window []models.TradeEntry
		for _, t := range ordered {
			if from != "" && (t.Date > today || t.Date < from) {
				continue
			}
			window = append(window, t)
		}
		snap.Timeframes[tf] = aggregate(window, social, startingValue)
	}
	return snap
}

// Between returns a copy of s whose Window stats cover the trades dated from
// from to to, both days inclusive.
func (s Snapshot) Between(from, to time.Time) Snapshot {
	lo, hi := from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02")
	var in []models.TradeEntry
	for _, t := range s.trades {
		if t.Date >= lo && t.Date <= hi {
			in = append(in, t)
		}
	}
	out := s
	out.Timeframes = make(map[Timeframe]UserStats, len(s.Timeframes)+1)
	for tf, st := range s.Timeframes {
		out.Timeframes[tf] = st
	}
	out.Timeframes[Window] = aggregate(in, s.social, s.startingValue)
	return out
}

// aggregate expects trades newest first.
func aggregate(trades []models.TradeEntry, social int, startingValue decimal.Decimal) UserStats {
	out := UserStats{TotalTrades: len(trades), Social: social}
	if len(trades) == 0 {
		return out
	}
	compliant := 0
	pnl := decimal.Zero
	days := map[string]struct{}{}
	streakOpen := true
	for _, t := range trades {
		if t.RuleCompliant {
			compliant++
			if streakOpen {
				out.Streak++
			}
		} else {
			streakOpen = false
		}
		pnl = pnl.Add(t.PnL)
		days[t.Date] = struct{}{}
	}
	out.ComplianceRate = percent(decimal.NewFromInt(int64(compliant)), decimal.NewFromInt(int64(len(trades))))
	if startingValue.IsPositive() {
		out.Growth = percent(pnl, startingValue)
	}
	out.Time = len(days)
	return out
}

func percent(part, whole decimal.Decimal) float64 {
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
