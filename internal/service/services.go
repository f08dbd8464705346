package service

import (
	"time"

	"go.uber.org/zap"

	"tradelog/internal/achievement"
	"tradelog/internal/blob"
	"tradelog/internal/compliance"
	"tradelog/internal/notify"
	"tradelog/internal/progress"
	"tradelog/internal/repository"
)

type Deps struct {
	Store            *repository.Store
	Blobs            blob.Store
	Settings         progress.Settings
	Notifier         notify.Notifier
	Logger           *zap.Logger
	ActivityCapacity int
	Now              func() time.Time
}

type Services struct {
	Journal      *JournalService
	Rules        *RuleService
	Achievements *AchievementService
	Progress     *progress.Accumulator
	Settings     progress.Settings
}

// New wires the services over one store.
func New(d Deps) *Services {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	engine := achievement.NewEngine()
	acc := &progress.Accumulator{
		Store:    d.Store,
		Settings: d.Settings,
		Logger:   d.Logger,
		Capacity: d.ActivityCapacity,
		Now:      d.Now,
	}
	achievements := &AchievementService{
		Store:    d.Store,
		Engine:   engine,
		Tracker:  &achievement.Tracker{Store: d.Store, Engine: engine, Logger: d.Logger},
		Settings: d.Settings,
		Notifier: d.Notifier,
		Logger:   d.Logger,
		Now:      d.Now,
	}
	return &Services{
		Journal: &JournalService{
			Store:        d.Store,
			Blobs:        d.Blobs,
			Evaluator:    &compliance.Evaluator{Now: d.Now},
			Progress:     acc,
			Achievements: achievements,
			Notifier:     d.Notifier,
			Logger:       d.Logger,
		},
		Rules:        &RuleService{Store: d.Store, Notifier: d.Notifier, Now: d.Now},
		Achievements: achievements,
		Progress:     acc,
		Settings:     d.Settings,
	}
}
