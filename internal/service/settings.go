package service

import (
	"github.com/shopspring/decimal"

	"tradelog/internal/config"
)

// StaticSettings serves the journal settings from loaded configuration.
type StaticSettings struct {
	cfg config.JournalConfig
}

func NewStaticSettings(cfg config.JournalConfig) StaticSettings {
	return StaticSettings{cfg: cfg}
}

func (s StaticSettings) StartingPortfolioValue() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.StartingPortfolioValue)
}

func (s StaticSettings) TargetCompletions() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.TargetCompletions)
}

func (s StaticSettings) PercentPerCompletion() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.PercentPerCompletion)
}
