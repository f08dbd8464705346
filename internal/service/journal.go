package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tradelog/internal/achievement"
	"tradelog/internal/blob"
	"tradelog/internal/compliance"
	"tradelog/internal/logger"
	"tradelog/internal/models"
	"tradelog/internal/notify"
	"tradelog/internal/progress"
	"tradelog/internal/repository"
	"tradelog/internal/stats"
)

var (
	ErrTradeNotFound      = errors.New("trade not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrDeleteNotConfirmed = errors.New("delete must be confirmed")
	ErrAttachmentSave     = errors.New("attachment save failed")
)

type SubmitRequest struct {
	Draft       compliance.Draft
	Rules       []compliance.AppliedRuleInput
	Attachments [][]byte
}

type SubmitResult struct {
	Trade      models.TradeEntry        `json:"trade"`
	Warnings   []compliance.Warning     `json:"warnings"`
	Progress   progress.Update          `json:"progress"`
	Unlocked   []achievement.Definition `json:"unlocked"`
	Challenges []achievement.Challenge  `json:"challenges"`
	Stats      stats.UserStats          `json:"stats"`
}

// JournalService runs the submit flow: evaluate, store attachments, sync the
// rule catalog, persist the trade, then fold it into progress and achievements.
type JournalService struct {
	Store        *repository.Store
	Blobs        blob.Store
	Evaluator    *compliance.Evaluator
	Progress     *progress.Accumulator
	Achievements *AchievementService
	Notifier     notify.Notifier
	Logger       *zap.Logger

	mu sync.Mutex
}

func (s *JournalService) log() *zap.Logger {
	return logger.OrNop(s.Logger)
}

func (s *JournalService) notify(ctx context.Context, collections ...string) {
	if s.Notifier != nil {
		s.Notifier.Changed(ctx, collections...)
	}
}

// SubmitTrade validates and persists one trade. A rejected draft or a failed
// attachment save leaves every collection untouched. The trade is written
// before the rule counters and removed again when the rule sync fails.
func (s *JournalService) SubmitTrade(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.Store.Rules(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	res, err := s.Evaluator.Evaluate(req.Draft, req.Rules, catalog)
	if err != nil {
		return SubmitResult{}, err
	}

	saved, err := s.saveAttachments(ctx, req.Attachments)
	if err != nil {
		return SubmitResult{}, err
	}
	trade := res.Trade
	trade.ImageIDs = saved

	trade.ID, err = s.nextTradeID(ctx)
	if err != nil {
		s.release(ctx, saved)
		return SubmitResult{}, fmt.Errorf("allocate trade id: %w", err)
	}
	_, err = s.Store.UpdateTrades(ctx, func(cur []models.TradeEntry) ([]models.TradeEntry, error) {
		return append([]models.TradeEntry{trade}, cur...), nil
	})
	if err != nil {
		s.release(ctx, saved)
		return SubmitResult{}, fmt.Errorf("save trade: %w", err)
	}

	_, err = s.Store.UpdateRules(ctx, func(cur []models.Rule) ([]models.Rule, error) {
		return compliance.SyncRules(compliance.AddPromoted(cur, res.Promoted), trade), nil
	})
	if err != nil {
		if rerr := s.removeTrade(ctx, trade.ID); rerr != nil {
			s.log().Error("trade kept without rule sync",
				zap.Int64("trade_id", trade.ID),
				zap.NamedError("sync_error", err),
				zap.Error(rerr),
			)
		} else {
			s.release(ctx, saved)
		}
		return SubmitResult{}, fmt.Errorf("sync rules: %w", err)
	}
	s.log().Info("trade recorded",
		zap.Int64("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.Bool("compliant", trade.RuleCompliant),
		zap.String("pnl", trade.PnL.String()),
	)

	out := SubmitResult{Trade: trade, Warnings: res.Warnings}
	if s.Progress != nil {
		upd, err := s.Progress.RecordTrade(ctx, trade)
		if err != nil {
			s.log().Warn("record progress failed", zap.Int64("trade_id", trade.ID), zap.Error(err))
		}
		out.Progress = upd
	}
	if s.Achievements != nil {
		ev, err := s.Achievements.evaluate(ctx)
		if err != nil {
			s.log().Warn("achievement evaluation failed", zap.Int64("trade_id", trade.ID), zap.Error(err))
		}
		out.Unlocked = ev.Unlocked
		out.Challenges = ev.Challenges
		out.Stats = ev.Snapshot.For(stats.AllTime)
	}

	s.notify(ctx, notify.Trades, notify.Rules, notify.DailyStats, notify.ActivityLog, notify.Progress, notify.Achievements)
	return out, nil
}

// nextTradeID lifts the sequence past ids stored before it existed.
func (s *JournalService) nextTradeID(ctx context.Context) (int64, error) {
	trades, err := s.Store.Trades(ctx)
	if err != nil {
		return 0, err
	}
	var floor int64
	for _, t := range trades {
		if t.ID > floor {
			floor = t.ID
		}
	}
	return s.Store.NextTradeID(ctx, floor)
}

func (s *JournalService) removeTrade(ctx context.Context, id int64) error {
	_, err := s.Store.UpdateTrades(ctx, func(cur []models.TradeEntry) ([]models.TradeEntry, error) {
		for i, t := range cur {
			if t.ID == id {
				out := make([]models.TradeEntry, 0, len(cur)-1)
				out = append(out, cur[:i]...)
				return append(out, cur[i+1:]...), nil
			}
		}
		return cur, repository.ErrNoChange
	})
	return err
}

func (s *JournalService) saveAttachments(ctx context.Context, items [][]byte) ([]int64, error) {
	ids := make([]int64, 0, len(items))
	for i, data := range items {
		if s.Blobs == nil {
			return nil, fmt.Errorf("%w: no attachment store", ErrAttachmentSave)
		}
		id, err := s.Blobs.Save(ctx, data)
		if err != nil {
			s.release(ctx, ids)
			return nil, fmt.Errorf("%w: attachment %d: %v", ErrAttachmentSave, i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *JournalService) release(ctx context.Context, ids []int64) {
	if len(ids) == 0 || s.Blobs == nil {
		return
	}
	if err := blob.Release(ctx, s.Blobs, ids); err != nil {
		s.log().Warn("release attachments failed", zap.Int64s("ids", ids), zap.Error(err))
	}
}

// ListTrades returns a page of trades, newest first, and the total count.
func (s *JournalService) ListTrades(ctx context.Context, limit, offset int) ([]models.TradeEntry, int, error) {
	trades, err := s.Store.Trades(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(trades)
	if offset >= total {
		return []models.TradeEntry{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return trades[offset:end], total, nil
}

func (s *JournalService) GetTrade(ctx context.Context, id int64) (models.TradeEntry, error) {
	trades, err := s.Store.Trades(ctx)
	if err != nil {
		return models.TradeEntry{}, err
	}
	for _, t := range trades {
		if t.ID == id {
			return t, nil
		}
	}
	return models.TradeEntry{}, ErrTradeNotFound
}

// DeleteTrade removes a trade and releases its attachments. It refuses to run
// unless confirm is set. Rule counters and progress are not rolled back.
func (s *JournalService) DeleteTrade(ctx context.Context, id int64, confirm bool) error {
	if !confirm {
		return ErrDeleteNotConfirmed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed models.TradeEntry
	_, err := s.Store.UpdateTrades(ctx, func(cur []models.TradeEntry) ([]models.TradeEntry, error) {
		for i, t := range cur {
			if t.ID == id {
				removed = t
				out := make([]models.TradeEntry, 0, len(cur)-1)
				out = append(out, cur[:i]...)
				return append(out, cur[i+1:]...), nil
			}
		}
		return cur, ErrTradeNotFound
	})
	if err != nil {
		return err
	}
	s.release(ctx, removed.ImageIDs)
	s.log().Info("trade deleted", zap.Int64("trade_id", id), zap.Int("attachments", len(removed.ImageIDs)))
	s.notify(ctx, notify.Trades)
	return nil
}

// RemoveAttachment detaches one attachment from a trade and deletes it.
func (s *JournalService) RemoveAttachment(ctx context.Context, tradeID, attachmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.Store.UpdateTrades(ctx, func(cur []models.TradeEntry) ([]models.TradeEntry, error) {
		for i, t := range cur {
			if t.ID != tradeID {
				continue
			}
			kept := make([]int64, 0, len(t.ImageIDs))
			for _, img := range t.ImageIDs {
				if img != attachmentID {
					kept = append(kept, img)
				}
			}
			if len(kept) == len(t.ImageIDs) {
				return cur, ErrAttachmentNotFound
			}
			out := make([]models.TradeEntry, len(cur))
			copy(out, cur)
			out[i].ImageIDs = kept
			return out, nil
		}
		return cur, ErrTradeNotFound
	})
	if err != nil {
		return err
	}
	if s.Blobs != nil {
		if err := s.Blobs.Delete(ctx, attachmentID); err != nil && !errors.Is(err, blob.ErrNotFound) {
			s.log().Warn("delete attachment failed", zap.Int64("attachment_id", attachmentID), zap.Error(err))
		}
	}
	s.notify(ctx, notify.Trades)
	return nil
}

// Attachment returns the bytes of an attachment referenced by tradeID.
func (s *JournalService) Attachment(ctx context.Context, tradeID, attachmentID int64) ([]byte, error) {
	trade, err := s.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	for _, id := range trade.ImageIDs {
		if id == attachmentID {
			data, err := s.Blobs.Get(ctx, id)
			if errors.Is(err, blob.ErrNotFound) {
				return nil, ErrAttachmentNotFound
			}
			return data, err
		}
	}
	return nil, ErrAttachmentNotFound
}

func (s *JournalService) DailyStats(ctx context.Context) (models.DailyStats, error) {
	return s.Store.DailyStats(ctx)
}

func (s *JournalService) ActivityLog(ctx context.Context) ([]models.ActivityLogEntry, error) {
	return s.Store.ActivityLog(ctx)
}

type ProgressView struct {
	models.Progress
	Target  string  `json:"target"`
	Percent float64 `json:"percent"`
}

func (s *JournalService) ProgressView(ctx context.Context, settings progress.Settings) (ProgressView, error) {
	p, err := s.Store.Progress(ctx)
	if err != nil {
		return ProgressView{}, err
	}
	target := settings.TargetCompletions()
	out := ProgressView{Progress: p, Target: target.String()}
	if target.IsPositive() {
		out.Percent = p.Completions.Div(target).Shift(2).Round(2).InexactFloat64()
	}
	return out, nil
}
