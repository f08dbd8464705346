package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradelog/internal/logger"
	"tradelog/internal/models"
	"tradelog/internal/repository"
)

const (
	DefaultCapacity = 1000
	unitPlaces      = 4
	monthLayout     = "2006-01"
)

var ErrInvalidSettings = errors.New("progress: starting portfolio value and percent per completion must be positive")

var hundred = decimal.NewFromInt(100)

// Settings is read only to the accumulator.
type Settings interface {
	StartingPortfolioValue() decimal.Decimal
	TargetCompletions() decimal.Decimal
	PercentPerCompletion() decimal.Decimal
}

// Update describes what one recorded trade changed.
type Update struct {
	Applied     decimal.Decimal `json:"applied"`
	Completions decimal.Decimal `json:"completions"`
	Saturated   bool            `json:"saturated"`
	Violation   bool            `json:"violation"`
}

// Accumulator folds finalized trades into the completion counter, daily
// statistics and the activity log.
type Accumulator struct {
	Store    *repository.Store
	Settings Settings
	Logger   *zap.Logger
	Capacity int
	Now      func() time.Time
}

func (a *Accumulator) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now()
}

func (a *Accumulator) capacity() int {
	if a.Capacity <= 0 {
		return DefaultCapacity
	}
	return a.Capacity
}

func (a *Accumulator) log() *zap.Logger {
	return logger.OrNop(a.Logger)
}

// RecordTrade is called once per finalized trade. Compliant trades with a
// positive pnl advance the counter; non-compliant trades count as a violation.
func (a *Accumulator) RecordTrade(ctx context.Context, trade models.TradeEntry) (Update, error) {
	if trade.PositiveCompliant() {
		start := a.Settings.StartingPortfolioValue()
		if !start.IsPositive() {
			return Update{}, ErrInvalidSettings
		}
		gain := trade.PnL.Div(start).Mul(hundred)
		return a.RecordTradeProgress(ctx, trade.Date, gain, true)
	}
	if !trade.RuleCompliant {
		return a.recordViolation(ctx, trade)
	}
	return Update{}, nil
}

// RecordTradeProgress converts percentGain into progress units and adds them
// to the counter, clipped at the target. Nothing is subtracted on this path.
func (a *Accumulator) RecordTradeProgress(ctx context.Context, date string, percentGain decimal.Decimal, isPositiveCompliantTrade bool) (Update, error) {
	if !isPositiveCompliantTrade || !percentGain.IsPositive() {
		return Update{}, nil
	}
	per := a.Settings.PercentPerCompletion()
	if !per.IsPositive() {
		return Update{}, ErrInvalidSettings
	}
	unit := percentGain.Div(per).Round(unitPlaces)
	target := a.Settings.TargetCompletions()

	var applied decimal.Decimal
	saturated := false
	progress, err := a.Store.UpdateProgress(ctx, func(cur models.Progress) (models.Progress, error) {
		applied = decimal.Zero
		remaining := target.Sub(cur.Completions)
		if !remaining.IsPositive() || !unit.IsPositive() {
			saturated = true
			return cur, repository.ErrNoChange
		}
		applied = decimal.Min(unit, remaining)
		saturated = applied.LessThan(unit)
		cur.Completions = cur.Completions.Add(applied)
		cur.UpdatedAt = a.now()
		return cur, nil
	})
	if err != nil {
		return Update{}, err
	}
	out := Update{Applied: applied, Completions: progress.Completions, Saturated: saturated}
	if !applied.IsPositive() {
		return out, nil
	}
	_, err = a.Store.UpdateDailyStats(ctx, func(stats models.DailyStats) (models.DailyStats, error) {
		day := stats[date]
		day.Completions = day.Completions.Add(applied)
		stats[date] = day
		return stats, nil
	})
	if err != nil {
		return out, err
	}
	a.log().Debug("progress recorded",
		zap.String("date", date),
		zap.String("applied", applied.String()),
		zap.String("completions", progress.Completions.String()),
	)
	return out, nil
}

func (a *Accumulator) recordViolation(ctx context.Context, trade models.TradeEntry) (Update, error) {
	_, err := a.Store.UpdateDailyStats(ctx, func(stats models.DailyStats) (models.DailyStats, error) {
		day := stats[trade.Date]
		day.Violations++
		stats[trade.Date] = day
		return stats, nil
	})
	if err != nil {
		return Update{}, err
	}

	entry := models.ActivityLogEntry{
		ID:        uuid.NewString(),
		Timestamp: a.now(),
		Type:      models.ActivityViolation,
		TradeID:   trade.ID,
		Date:      trade.Date,
	}
	var overflow []models.ActivityLogEntry
	_, err = a.Store.UpdateActivityLog(ctx, func(items []models.ActivityLogEntry) ([]models.ActivityLogEntry, error) {
		items = append(items, entry)
		overflow = nil
		if n := len(items) - a.capacity(); n > 0 {
			overflow = append(overflow, items[:n]...)
			items = append([]models.ActivityLogEntry(nil), items[n:]...)
		}
		return items, nil
	})
	if err != nil {
		return Update{}, err
	}
	if err := a.archive(ctx, overflow); err != nil {
		a.log().Warn("archive activity overflow failed", zap.Int("entries", len(overflow)), zap.Error(err))
	}
	return Update{Violation: true}, nil
}

// ArchiveBefore moves activity entries older than cutoff into monthly archive
// documents and returns how many were moved.
func (a *Accumulator) ArchiveBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var moved []models.ActivityLogEntry
	_, err := a.Store.UpdateActivityLog(ctx, func(items []models.ActivityLogEntry) ([]models.ActivityLogEntry, error) {
		moved = nil
		kept := make([]models.ActivityLogEntry, 0, len(items))
		for _, it := range items {
			if it.Timestamp.Before(cutoff) {
				moved = append(moved, it)
				continue
			}
			kept = append(kept, it)
		}
		if len(moved) == 0 {
			return items, repository.ErrNoChange
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	if err := a.archive(ctx, moved); err != nil {
		return 0, err
	}
	return len(moved), nil
}

func (a *Accumulator) archive(ctx context.Context, entries []models.ActivityLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	byMonth := map[string][]models.ActivityLogEntry{}
	var months []string
	for _, e := range entries {
		m := e.Timestamp.UTC().Format(monthLayout)
		if _, ok := byMonth[m]; !ok {
			months = append(months, m)
		}
		byMonth[m] = append(byMonth[m], e)
	}
	for _, m := range months {
		batch := byMonth[m]
		_, err := a.Store.UpdateActivityArchive(ctx, m, func(items []models.ActivityLogEntry) ([]models.ActivityLogEntry, error) {
			return append(items, batch...), nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
