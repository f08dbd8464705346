package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradelog/internal/achievement"
	"tradelog/internal/logger"
	"tradelog/internal/notify"
	"tradelog/internal/progress"
	"tradelog/internal/repository"
	"tradelog/internal/stats"
)

// AchievementService builds stats snapshots and hands satisfied definitions
// to the tracker, the only writer of unlock state.
type AchievementService struct {
	Store    *repository.Store
	Engine   *achievement.Engine
	Tracker  *achievement.Tracker
	Settings progress.Settings
	Notifier notify.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

type Evaluation struct {
	Snapshot   stats.Snapshot           `json:"snapshot"`
	Unlocked   []achievement.Definition `json:"unlocked"`
	Challenges []achievement.Challenge  `json:"challenges"`
}

type Status struct {
	achievement.Definition
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

type ChallengeStatus struct {
	achievement.Challenge
	Satisfied bool    `json:"satisfied"`
	Progress  float64 `json:"progress"`
}

func (s *AchievementService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// Snapshot derives the current stats from trades and the social count.
func (s *AchievementService) Snapshot(ctx context.Context) (stats.Snapshot, error) {
	trades, err := s.Store.Trades(ctx)
	if err != nil {
		return stats.Snapshot{}, err
	}
	social, err := s.Store.SocialConnections(ctx)
	if err != nil {
		return stats.Snapshot{}, err
	}
	return stats.Build(trades, social, s.Settings.StartingPortfolioValue(), s.now()), nil
}

// Evaluate checks the catalog and active challenges and unlocks what is newly
// satisfied.
func (s *AchievementService) Evaluate(ctx context.Context) (Evaluation, error) {
	ev, err := s.evaluate(ctx)
	if err != nil {
		return ev, err
	}
	if len(ev.Unlocked) > 0 && s.Notifier != nil {
		s.Notifier.Changed(ctx, notify.Achievements)
	}
	return ev, nil
}

func (s *AchievementService) evaluate(ctx context.Context) (Evaluation, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	now := s.now()
	satisfied := s.Engine.CheckAchievements(snap)
	challenges := s.Engine.CheckChallenges(snap, now)
	for _, c := range challenges {
		satisfied = append(satisfied, c.Definition)
	}
	unlocked, err := s.Tracker.Unlock(ctx, satisfied)
	if err != nil {
		return Evaluation{Snapshot: snap}, err
	}
	if len(unlocked) > 0 {
		logger.OrNop(s.Logger).Info("achievements unlocked", zap.Int("count", len(unlocked)))
	}
	return Evaluation{Snapshot: snap, Unlocked: unlocked, Challenges: challenges}, nil
}

func (s *AchievementService) Unlocked(ctx context.Context) ([]achievement.Definition, error) {
	return s.Tracker.Unlocked(ctx)
}

// List returns every catalog definition with its unlock state and progress.
func (s *AchievementService) List(ctx context.Context) ([]Status, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := s.Store.Unlocked(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(ids))
	for _, id := range ids {
		have[id] = true
	}
	out := make([]Status, 0, len(s.Engine.Definitions))
	for _, def := range s.Engine.Definitions {
		st := Status{Definition: def, Unlocked: have[def.ID], Progress: achievement.Progress(def, snap)}
		if st.Unlocked {
			st.Progress = 1
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *AchievementService) ActiveChallenges(ctx context.Context) ([]ChallengeStatus, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	active := s.Engine.GetActiveChallenges(now)
	out := make([]ChallengeStatus, 0, len(active))
	for _, c := range active {
		scoped := c.Scope(snap, now)
		out = append(out, ChallengeStatus{
			Challenge: c,
			Satisfied: achievement.IsSatisfied(c.Definition, scoped),
			Progress:  achievement.Progress(c.Definition, scoped),
		})
	}
	return out, nil
}
