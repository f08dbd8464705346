package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// Outcome records how a trade related to one applied rule.
type Outcome string

const (
	OutcomeFollowed      Outcome = "Followed"
	OutcomeBroken        Outcome = "Broken"
	OutcomeNotApplicable Outcome = "NotApplicable"
)

func (o Outcome) Valid() bool {
	return o == OutcomeFollowed || o == OutcomeBroken || o == OutcomeNotApplicable
}

// AppliedRule references a catalog rule attached to a trade. Text is kept as a
// display copy; ID is the only matching key.
type AppliedRule struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TradeEntry is one logged trade. PnL and RuleCompliant are derived and are
// only ever written by the compliance evaluator or a migration. LegacyID keeps
// a non-numeric id that the id normalization replaced.
type TradeEntry struct {
	ID        int64     `json:"id"`
	LegacyID  string    `json:"legacyId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Date      string    `json:"date"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`

	EntryPrice  decimal.Decimal  `json:"entryPrice"`
	ExitPrice   decimal.Decimal  `json:"exitPrice"`
	Size        decimal.Decimal  `json:"size"`
	TargetPrice *decimal.Decimal `json:"targetPrice,omitempty"`
	StopPrice   *decimal.Decimal `json:"stopPrice,omitempty"`

	Emotion  string  `json:"emotion,omitempty"`
	Notes    string  `json:"notes,omitempty"`
	ImageIDs []int64 `json:"imageIds"`

	Rules        []AppliedRule      `json:"rules"`
	RuleOutcomes map[string]Outcome `json:"ruleOutcomes"`
	Tags         []string           `json:"tags"`

	PnL           decimal.Decimal `json:"pnl"`
	RuleCompliant bool            `json:"ruleCompliant"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// PositiveCompliant reports whether the trade feeds the progress counter.
func (t TradeEntry) PositiveCompliant() bool {
	return t.RuleCompliant && t.PnL.IsPositive()
}
